package dialog

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisanvaani/kisan-agent-service/internal/advisor"
	"github.com/kisanvaani/kisan-agent-service/internal/config"
	"github.com/kisanvaani/kisan-agent-service/internal/farming"
	"github.com/kisanvaani/kisan-agent-service/internal/language"
	"github.com/kisanvaani/kisan-agent-service/internal/queue"
	"github.com/kisanvaani/kisan-agent-service/internal/session"
)

// recordingPublisher captures the routing keys of published events.
type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) PublishJSON(_ context.Context, routingKey string, _ interface{}) error {
	p.events = append(p.events, routingKey)
	return nil
}

func newTestController(t *testing.T, mergeStrategy string) (*Controller, *session.MemoryStore) {
	t.Helper()
	ctrl, store, _ := newTestControllerWithPublisher(t, mergeStrategy)
	return ctrl, store
}

func newTestControllerWithPublisher(t *testing.T, mergeStrategy string) (*Controller, *session.MemoryStore, *recordingPublisher) {
	t.Helper()
	cfg := &config.Config{
		PublicBaseURL:        "https://example.test",
		SpeechTimeout:        "auto",
		ContextMergeStrategy: mergeStrategy,
	}
	store := session.NewMemoryStore()
	pub := &recordingPublisher{}
	ctrl := NewController(
		cfg,
		store,
		advisor.NewRuleGenerator(),
		NewTextProvider(nil, zerolog.Nop()),
		pub,
		nil,
		zerolog.Nop(),
	)
	return ctrl, store, pub
}

func TestIsEndPhrase(t *testing.T) {
	ending := []string{
		"नहीं, मैं बंद करना चाहता हूं",
		"No, I want to end the call",
		"बंद कर दो",
		"End the call",
		"खत्म करो",
	}
	for _, utterance := range ending {
		assert.True(t, IsEndPhrase(utterance), "%q must end the call", utterance)
	}

	assert.False(t, IsEndPhrase("paani ke baare mein batao"))
	assert.False(t, IsEndPhrase(""))
}

func TestStartCall(t *testing.T) {
	ctrl, store := newTestController(t, config.MergeStrategyReplace)

	doc, err := ctrl.StartCall(context.Background(), "CA123", "+919000000001")
	require.NoError(t, err)

	assert.Contains(t, doc, "नमस्ते!", "greeting defaults to Hindi")
	assert.Contains(t, doc, `action="https://example.test/process_context"`)
	assert.Contains(t, doc, `input="speech"`)

	sess, err := store.Get(context.Background(), "CA123")
	require.NoError(t, err)
	assert.Equal(t, "+919000000001", sess.From)
	assert.Equal(t, language.Default, sess.Language)
}

func TestProcessContext(t *testing.T) {
	ctrl, store := newTestController(t, config.MergeStrategyReplace)
	ctx := context.Background()

	_, err := ctrl.StartCall(ctx, "CA123", "+919000000001")
	require.NoError(t, err)

	doc, err := ctrl.ProcessContext(ctx, "CA123", "Haryana mein gehun ki kheti kar raha hun, paani ki kami hai")
	require.NoError(t, err)

	assert.Contains(t, doc, "Now ask your question.", "detected language drives the prompt")
	assert.Contains(t, doc, `action="https://example.test/process_query"`)

	sess, err := store.Get(ctx, "CA123")
	require.NoError(t, err)
	assert.Equal(t, "हरियाणा", sess.Context.Location)
	assert.Equal(t, "wheat", sess.Context.Crop)
	assert.Equal(t, farming.WaterShortage, sess.Context.Water)
	assert.Equal(t, language.English, sess.Language)
}

func TestProcessContextUnknownSession(t *testing.T) {
	ctrl, _ := newTestController(t, config.MergeStrategyReplace)

	_, err := ctrl.ProcessContext(context.Background(), "CA404", "gehun ki kheti")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestProcessContextReplaceStrategy(t *testing.T) {
	ctrl, store := newTestController(t, config.MergeStrategyReplace)
	ctx := context.Background()

	_, err := ctrl.StartCall(ctx, "CA123", "+919000000001")
	require.NoError(t, err)
	_, err = ctrl.ProcessContext(ctx, "CA123", "gehun ki kheti, paani ki kami")
	require.NoError(t, err)
	_, err = ctrl.ProcessContext(ctx, "CA123", "kali mitti hai")
	require.NoError(t, err)

	sess, err := store.Get(ctx, "CA123")
	require.NoError(t, err)
	assert.Empty(t, sess.Context.Crop, "replace drops earlier slots")
	assert.Equal(t, "black soil", sess.Context.SoilType)
}

func TestProcessContextMergeStrategy(t *testing.T) {
	ctrl, store := newTestController(t, config.MergeStrategyMerge)
	ctx := context.Background()

	_, err := ctrl.StartCall(ctx, "CA123", "+919000000001")
	require.NoError(t, err)
	_, err = ctrl.ProcessContext(ctx, "CA123", "gehun ki kheti, paani ki kami")
	require.NoError(t, err)
	_, err = ctrl.ProcessContext(ctx, "CA123", "kali mitti hai")
	require.NoError(t, err)

	sess, err := store.Get(ctx, "CA123")
	require.NoError(t, err)
	assert.Equal(t, "wheat", sess.Context.Crop, "merge keeps earlier slots")
	assert.Equal(t, farming.WaterShortage, sess.Context.Water)
	assert.Equal(t, "black soil", sess.Context.SoilType)
}

func TestProcessQueryAnswersAndLoops(t *testing.T) {
	ctrl, _ := newTestController(t, config.MergeStrategyReplace)
	ctx := context.Background()

	_, err := ctrl.StartCall(ctx, "CA123", "+919000000001")
	require.NoError(t, err)
	_, err = ctrl.ProcessContext(ctx, "CA123", "gehun ki kheti, paani ki kami hai")
	require.NoError(t, err)

	doc, err := ctrl.ProcessQuery(ctx, "CA123", "dawa kaun si daalun")
	require.NoError(t, err)

	assert.Contains(t, doc, "नीम का तेल")
	assert.Contains(t, doc, "wheat", "answer interpolates the stored crop")
	assert.Contains(t, doc, `action="https://example.test/process_query"`, "follow-up loops back to the query route")
	assert.NotContains(t, doc, "<Hangup")
}

func TestProcessQueryEndPhrases(t *testing.T) {
	ending := []string{
		"नहीं, मैं बंद करना चाहता हूं",
		"No, I want to end the call",
		"बंद कर दो",
		"End the call",
		"खत्म करो",
	}

	for _, utterance := range ending {
		t.Run(utterance, func(t *testing.T) {
			ctrl, store := newTestController(t, config.MergeStrategyReplace)
			ctx := context.Background()

			_, err := ctrl.StartCall(ctx, "CA123", "+919000000001")
			require.NoError(t, err)

			doc, err := ctrl.ProcessQuery(ctx, "CA123", utterance)
			require.NoError(t, err)

			assert.Contains(t, doc, "<Hangup")
			assert.Contains(t, doc, "धन्यवाद!")

			_, err = store.Get(ctx, "CA123")
			assert.ErrorIs(t, err, session.ErrNotFound, "session must be gone after termination")
		})
	}
}

func TestProcessQueryUnknownSession(t *testing.T) {
	ctrl, _ := newTestController(t, config.MergeStrategyReplace)

	_, err := ctrl.ProcessQuery(context.Background(), "CA404", "dawa chahiye")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestCompleteCall(t *testing.T) {
	ctrl, store := newTestController(t, config.MergeStrategyReplace)
	ctx := context.Background()

	_, err := ctrl.StartCall(ctx, "CA123", "+919000000001")
	require.NoError(t, err)

	ctrl.CompleteCall(ctx, "CA123")

	_, err = store.Get(ctx, "CA123")
	assert.ErrorIs(t, err, session.ErrNotFound)

	// Completing an already-cleaned call is a no-op.
	ctrl.CompleteCall(ctx, "CA123")
}

func TestActiveSessions(t *testing.T) {
	ctrl, _ := newTestController(t, config.MergeStrategyReplace)
	ctx := context.Background()

	count, err := ctrl.ActiveSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = ctrl.StartCall(ctx, "CA1", "+911")
	require.NoError(t, err)
	_, err = ctrl.StartCall(ctx, "CA2", "+912")
	require.NoError(t, err)

	count, err = ctrl.ActiveSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLifecycleEventsPairUp(t *testing.T) {
	t.Run("caller says an end phrase", func(t *testing.T) {
		ctrl, _, pub := newTestControllerWithPublisher(t, config.MergeStrategyReplace)
		ctx := context.Background()

		_, err := ctrl.StartCall(ctx, "CA123", "+919000000001")
		require.NoError(t, err)

		_, err = ctrl.ProcessQuery(ctx, "CA123", "बंद कर दो")
		require.NoError(t, err)

		assert.Equal(t, []string{queue.EventCallAnswered, queue.EventCallCompleted}, pub.events)

		// The provider's own call-completed webhook arrives afterwards and
		// must not emit a duplicate.
		ctrl.CompleteCall(ctx, "CA123")
		assert.Equal(t, []string{queue.EventCallAnswered, queue.EventCallCompleted}, pub.events)
	})

	t.Run("provider reports call-completed", func(t *testing.T) {
		ctrl, _, pub := newTestControllerWithPublisher(t, config.MergeStrategyReplace)
		ctx := context.Background()

		_, err := ctrl.StartCall(ctx, "CA123", "+919000000001")
		require.NoError(t, err)

		ctrl.CompleteCall(ctx, "CA123")
		assert.Equal(t, []string{queue.EventCallAnswered, queue.EventCallCompleted}, pub.events)
	})
}

func TestApologyDocument(t *testing.T) {
	ctrl, _ := newTestController(t, config.MergeStrategyReplace)

	doc := ctrl.ApologyDocument()
	assert.Contains(t, doc, "Sorry, there was an error.")
	assert.Contains(t, doc, "<Response>")
}
