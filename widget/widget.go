// Package widget implements the chat widget: a send action that reads one
// input, appends the question to a transcript, posts it to the /ask endpoint
// and appends the assistant's reply when it arrives.
package widget

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	UserPrefix      = "User: "
	AssistantPrefix = "Assistant: "
)

// Input is the text control the widget reads the question from.
type Input interface {
	Value() string
	SetValue(string)
}

// Output is the container transcript lines are appended to.
type Output interface {
	Append(text string)
}

// Asker sends one question to the backend.
type Asker interface {
	Ask(ctx context.Context, question string) (Reply, error)
}

// ChatWidget binds an input, an output and an Asker. Each Click is
// independent: there is no request sequencing, cancellation or retry, so
// replies are appended in the order they complete.
type ChatWidget struct {
	input  Input
	output Output
	asker  Asker
	log    logrus.FieldLogger

	mu       sync.Mutex // serializes appends
	inflight sync.WaitGroup
}

func New(input Input, output Output, asker Asker, log logrus.FieldLogger) *ChatWidget {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ChatWidget{
		input:  input,
		output: output,
		asker:  asker,
		log:    log,
	}
}

// Click performs the send action. With an empty input it does nothing and
// returns false. Otherwise the user line is appended and the input cleared
// before Click returns, and the request continues in the background.
func (w *ChatWidget) Click(ctx context.Context) bool {
	question := w.input.Value()
	if question == "" {
		return false
	}

	w.append(UserPrefix + question)
	w.input.SetValue("")

	w.inflight.Add(1)
	go func() {
		defer w.inflight.Done()

		reply, err := w.asker.Ask(ctx, question)
		if err != nil {
			w.log.WithError(err).Error("Error:")
			return
		}
		w.append(AssistantPrefix + reply.String())
	}()
	return true
}

// Wait blocks until every request started by Click has settled.
func (w *ChatWidget) Wait() {
	w.inflight.Wait()
}

func (w *ChatWidget) append(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.output.Append(text)
}
