// Package twiml renders the IVR actions the dialogue controller chooses
// into the provider's voice-response markup. Text is escaped by the XML
// marshaler, never concatenated into the document.
package twiml

import (
	"encoding/xml"
	"fmt"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// Action is one renderable IVR instruction.
type Action interface {
	verbs() []interface{}
}

// Speak plays spoken text and ends the document.
type Speak struct {
	Text     string
	Language string
}

// GatherSpeech speaks zero or more lines, then captures speech input and
// posts the transcript to the callback route. Hint is spoken inside the
// gather while the provider waits for the caller.
type GatherSpeech struct {
	Spoken        []string
	Hint          string
	Language      string
	Action        string
	SpeechTimeout string
}

// Hangup speaks a final text and disconnects.
type Hangup struct {
	FinalText string
	Language  string
}

type sayVerb struct {
	XMLName  xml.Name `xml:"Say"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

type gatherVerb struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr"`
	Language      string   `xml:"language,attr,omitempty"`
	Say           []sayVerb
}

type hangupVerb struct {
	XMLName xml.Name `xml:"Hangup"`
}

type response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []interface{}
}

func (a Speak) verbs() []interface{} {
	return []interface{}{sayVerb{Language: a.Language, Text: a.Text}}
}

func (a GatherSpeech) verbs() []interface{} {
	out := make([]interface{}, 0, len(a.Spoken)+1)
	for _, line := range a.Spoken {
		out = append(out, sayVerb{Language: a.Language, Text: line})
	}
	g := gatherVerb{
		Input:         "speech",
		Action:        a.Action,
		Method:        "POST",
		SpeechTimeout: a.SpeechTimeout,
		Language:      a.Language,
	}
	if a.Hint != "" {
		g.Say = []sayVerb{{Language: a.Language, Text: a.Hint}}
	}
	return append(out, g)
}

func (a Hangup) verbs() []interface{} {
	out := []interface{}{}
	if a.FinalText != "" {
		out = append(out, sayVerb{Language: a.Language, Text: a.FinalText})
	}
	return append(out, hangupVerb{})
}

// Render marshals the action into a complete voice-response document.
func Render(a Action) (string, error) {
	doc, err := xml.MarshalIndent(response{Verbs: a.verbs()}, "", "    ")
	if err != nil {
		return "", fmt.Errorf("twiml marshal failed: %w", err)
	}
	return header + string(doc), nil
}
