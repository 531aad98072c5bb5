package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixit-research/dixit/internal/api"
	apierrors "github.com/dixit-research/dixit/internal/errors"
	"github.com/dixit-research/dixit/internal/models"
)

// fakeSender returns canned results and counts calls
type fakeSender struct {
	calls  atomic.Int32
	answer *models.Answer
	err    error
}

func (f *fakeSender) Send(ctx context.Context, question string) (*models.Answer, error) {
	f.calls.Add(1)
	return f.answer, f.err
}

// gatedSender blocks until the test releases it, simulating a slow backend
type gatedSender struct {
	started chan string
	release chan struct{}
	answer  *models.Answer
}

func newGatedSender(answer *models.Answer) *gatedSender {
	return &gatedSender{
		started: make(chan string, 1),
		release: make(chan struct{}),
		answer:  answer,
	}
}

func (g *gatedSender) Send(ctx context.Context, question string) (*models.Answer, error) {
	g.started <- question
	<-g.release
	return g.answer, nil
}

func TestNewControllerStartsIdleWithGreeting(t *testing.T) {
	c := New(&fakeSender{}, WithGreeting("Hello researcher"))

	assert.Equal(t, StateIdle, c.State())
	assert.False(t, c.Sending())
	assert.Empty(t, c.Sources())
	assert.Empty(t, c.Status())

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, models.RoleBot, msgs[0].Role)
	assert.Equal(t, "Hello researcher", msgs[0].Text)
}

func TestAskEndToEndSuccess(t *testing.T) {
	sender := &fakeSender{answer: &models.Answer{Text: "Entanglement is..."}}
	c := New(sender)

	outcome, err := c.Ask(context.Background(), "What is quantum entanglement?")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAnswered, outcome)

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, models.RoleUser, msgs[1].Role)
	assert.Equal(t, "What is quantum entanglement?", msgs[1].Text)
	assert.Equal(t, models.RoleBot, msgs[2].Role)
	assert.Equal(t, "Entanglement is...", msgs[2].Text)

	assert.Equal(t, StateIdle, c.State())
	assert.Empty(t, c.Status())
	assert.EqualValues(t, 1, sender.calls.Load())
}

func TestAskEndToEndUnreachable(t *testing.T) {
	sender := &fakeSender{err: apierrors.NewUnreachableError("http://localhost:8000/api/ask", errors.New("connection refused"))}
	c := New(sender)

	outcome, err := c.Ask(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)

	last := c.Messages()[2]
	assert.Equal(t, models.RoleBot, last.Role)
	assert.Contains(t, last.Text, MarkerUnreachable)
	assert.Contains(t, last.Text, "connection refused")

	assert.Equal(t, StateIdle, c.State())
	assert.Empty(t, c.Sources())
	assert.Equal(t, StatusFailed, c.Status())
	assert.True(t, apierrors.IsUnreachable(c.LastError()))
}

func TestRealClientFailureThroughController(t *testing.T) {
	sender := &api.MockClient{SendErr: apierrors.NewStatusError(503, "/api/ask", "overloaded")}
	c := New(sender)

	outcome, _ := c.Ask(context.Background(), "q")
	assert.Equal(t, OutcomeFailed, outcome)
	text := c.Messages()[2].Text
	assert.Contains(t, text, MarkerBackendError)
	assert.Contains(t, text, "HTTP 503")
	assert.Contains(t, text, "overloaded")
	assert.Equal(t, "q", sender.LastQuestion)
}

func TestBlankInputIsNoOp(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t ", " "} {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			sender := &fakeSender{answer: &models.Answer{Text: "x"}}
			c := New(sender)

			req, ok := c.Submit(input)
			assert.False(t, ok)
			assert.Nil(t, req)

			outcome, err := c.Ask(context.Background(), input)
			assert.NoError(t, err)
			assert.Equal(t, OutcomeIgnored, outcome)

			assert.Equal(t, 1, c.Store().Len())
			assert.EqualValues(t, 0, sender.calls.Load())
			assert.Equal(t, StateIdle, c.State())
		})
	}
}

func TestSubmitNormalizesWhitespace(t *testing.T) {
	c := New(&fakeSender{})

	req, ok := c.Submit("  what   is\n a qubit? ")
	require.True(t, ok)
	assert.Equal(t, "what is a qubit?", req.Question)
	assert.Equal(t, "what is a qubit?", c.Store().Last().Text)
	assert.Equal(t, StateSending, c.State())
	assert.Equal(t, StatusThinking, c.Status())
}

func TestSecondSubmitWhileSendingIsIgnored(t *testing.T) {
	c := New(&fakeSender{answer: &models.Answer{Text: "a"}})

	first, ok := c.Submit("first")
	require.True(t, ok)
	lenAfterFirst := c.Store().Len()

	second, ok := c.Submit("second")
	assert.False(t, ok)
	assert.Nil(t, second)
	assert.Equal(t, lenAfterFirst, c.Store().Len())

	outcome, err := c.Ask(context.Background(), "third")
	assert.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
	assert.Equal(t, lenAfterFirst, c.Store().Len())

	assert.Equal(t, OutcomeAnswered, c.Complete(c.Dispatch(context.Background(), first)))
	assert.Equal(t, lenAfterFirst+1, c.Store().Len())

	_, ok = c.Submit("now accepted")
	assert.True(t, ok)
}

func TestResetAlwaysYieldsGreeting(t *testing.T) {
	c := New(&fakeSender{answer: &models.Answer{Text: "a"}}, WithGreeting("greet"))
	greeting := c.Messages()[0]

	for i := 0; i < 4; i++ {
		_, err := c.Ask(context.Background(), fmt.Sprintf("q%d", i))
		require.NoError(t, err)
	}
	require.Equal(t, 9, c.Store().Len())

	c.Reset()
	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, greeting, msgs[0])

	c.Reset()
	assert.Len(t, c.Messages(), 1)
}

func TestResetDuringSendingDropsLateResponse(t *testing.T) {
	sender := newGatedSender(&models.Answer{
		Text:    "late answer",
		Sources: []models.Source{{Title: "A", URL: "http://u"}},
	})
	c := New(sender)

	req, ok := c.Submit("slow question")
	require.True(t, ok)

	done := make(chan Result)
	go func() {
		done <- c.Dispatch(context.Background(), req)
	}()
	assert.Equal(t, "slow question", <-sender.started)

	c.Reset()
	assert.Equal(t, 1, c.Store().Len())
	assert.Equal(t, StateSending, c.State(), "reset does not cancel the in-flight request")

	_, ok = c.Submit("while still sending")
	assert.False(t, ok)

	close(sender.release)
	outcome := c.Complete(<-done)

	assert.Equal(t, OutcomeStale, outcome)
	assert.Equal(t, 1, c.Store().Len())
	assert.Empty(t, c.Sources())
	assert.Equal(t, StateIdle, c.State())

	_, ok = c.Submit("fresh question")
	assert.True(t, ok)
}

func TestSourcesReplacedAndClearedOnFailure(t *testing.T) {
	sender := &fakeSender{answer: &models.Answer{
		Text:    "X",
		Sources: []models.Source{{Title: "A", URL: "http://u"}},
	}}
	c := New(sender)

	_, err := c.Ask(context.Background(), "one")
	require.NoError(t, err)
	sources := c.Sources()
	require.Len(t, sources, 1)
	assert.Equal(t, "A", sources[0].Title)
	assert.Equal(t, "http://u", sources[0].Link())

	sources[0].Title = "mutated"
	assert.Equal(t, "A", c.Sources()[0].Title)

	sender.answer = &models.Answer{Text: "Y"}
	_, err = c.Ask(context.Background(), "two")
	require.NoError(t, err)
	assert.Empty(t, c.Sources())

	sender.answer = &models.Answer{Text: "Z", Sources: []models.Source{{Title: "B"}, {Title: "C"}}}
	_, err = c.Ask(context.Background(), "three")
	require.NoError(t, err)
	assert.Len(t, c.Sources(), 2)

	sender.answer = nil
	sender.err = apierrors.NewInvalidResponseShapeError(api.AnswerPaths())
	outcome, _ := c.Ask(context.Background(), "four")
	assert.Equal(t, OutcomeFailed, outcome)
	assert.Empty(t, c.Sources())
	assert.Contains(t, c.Store().Last().Text, MarkerInvalidShape)
}

func TestCompleteIgnoresUnknownOrRepeatedResults(t *testing.T) {
	c := New(&fakeSender{answer: &models.Answer{Text: "a"}})

	assert.Equal(t, OutcomeIgnored, c.Complete(Result{}))
	assert.Equal(t, OutcomeIgnored, c.Complete(Result{Request: &Request{Question: "forged"}}))

	req, ok := c.Submit("q")
	require.True(t, ok)
	res := c.Dispatch(context.Background(), req)

	assert.Equal(t, OutcomeAnswered, c.Complete(res))
	assert.Equal(t, OutcomeIgnored, c.Complete(res))
	assert.Equal(t, 3, c.Store().Len())
}

func TestCompleteWithEmptyAnswerIsInvalidShape(t *testing.T) {
	c := New(&fakeSender{answer: &models.Answer{Text: ""}})

	outcome, err := c.Ask(context.Background(), "q")
	assert.NoError(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.True(t, apierrors.IsInvalidShape(c.LastError()))
}

func TestGenerationIncrementsOnReset(t *testing.T) {
	c := New(&fakeSender{})
	assert.EqualValues(t, 0, c.Generation())
	c.Reset()
	c.Reset()
	assert.EqualValues(t, 2, c.Generation())
}

func TestLogfReceivesDiagnostics(t *testing.T) {
	var lines []string
	c := New(&fakeSender{answer: &models.Answer{Text: "a"}}, WithLogf(func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}))

	_, err := c.Ask(context.Background(), "q")
	require.NoError(t, err)
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "sending question"))
}

func TestStateAndOutcomeStrings(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "sending", StateSending.String())
	assert.Equal(t, "answered", OutcomeAnswered.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "stale", OutcomeStale.String())
	assert.Equal(t, "ignored", OutcomeIgnored.String())
}
