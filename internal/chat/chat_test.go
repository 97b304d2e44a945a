package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/HendryAvila/moodmate/internal/profile"
	"github.com/HendryAvila/moodmate/internal/rules"
	"github.com/HendryAvila/moodmate/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	chunks []string
	err    error
	got    Prompt
}

func (f *fakeProvider) Stream(_ context.Context, p Prompt, emit func(string) error) error {
	f.got = p
	for _, c := range f.chunks {
		if err := emit(c); err != nil {
			return err
		}
	}
	return f.err
}

type env struct {
	svc   *Service
	hist  *History
	moods *mood.Store
	prov  *fakeProvider
}

func newEnv(prov *fakeProvider) *env {
	kv := kvstore.NewMemoryStore(0)
	log := zap.NewNop()
	e := &env{
		hist:  NewHistory(kv, log),
		moods: mood.NewStore(kv, log),
		prov:  prov,
	}
	deps := Deps{
		History:  e.hist,
		Moods:    e.moods,
		Profile:  profile.NewStore(kv, log),
		Settings: settings.NewStore(kv, log),
	}
	if prov != nil {
		deps.Provider = prov
	}
	e.svc = NewService(deps, log)
	return e
}

func collect(t *testing.T, e *env, req Request) (Reply, []string) {
	t.Helper()
	var got []string
	r, err := e.svc.Stream(context.Background(), req, func(s string) error {
		got = append(got, s)
		return nil
	})
	require.NoError(t, err)
	return r, got
}

func TestStream_Chunks(t *testing.T) {
	e := newEnv(&fakeProvider{chunks: []string{"Bon", "jour"}})
	r, got := collect(t, e, Request{Message: " salut ", Mood: mood.Tired})

	assert.Equal(t, []string{"Bon", "jour"}, got)
	assert.Equal(t, Reply{Text: "Bonjour"}, r)
	assert.Equal(t, "salut", e.prov.got.Message)
	assert.Contains(t, e.prov.got.System, "tired")
	assert.Equal(t, "gemini-2.5-flash", e.prov.got.Model)

	msgs := e.hist.Recent(0)
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "Bonjour", msgs[1].Content)
}

func TestStream_UsesCurrentMoodAndStoredHistory(t *testing.T) {
	e := newEnv(&fakeProvider{chunks: []string{"ok"}})
	e.moods.Set(mood.Sad, 1, "")
	collect(t, e, Request{Message: "premier"})
	collect(t, e, Request{Message: "second"})

	assert.Contains(t, e.prov.got.System, "sad")
	require.Len(t, e.prov.got.History, 2)
	assert.Equal(t, Turn{Role: RoleUser, Content: "premier"}, e.prov.got.History[0])
}

func TestStream_RequestOverrides(t *testing.T) {
	e := newEnv(&fakeProvider{chunks: []string{"ok"}})
	st := settings.Defaults()
	st.AIModel = "gemini-pro"
	collect(t, e, Request{
		Message:  "x",
		History:  []Turn{},
		Profile:  &profile.UserProfile{Name: "Sam"},
		Settings: &st,
	})
	assert.Equal(t, "gemini-pro", e.prov.got.Model)
	assert.Contains(t, e.prov.got.System, "Sam")
	assert.Empty(t, e.prov.got.History)
}

func TestStream_FallbackOnProviderError(t *testing.T) {
	e := newEnv(&fakeProvider{err: errors.New("boom")})
	r, got := collect(t, e, Request{Message: "aide", Mood: mood.Stressed})

	assert.True(t, r.Fallback)
	assert.Equal(t, []string{rules.FallbackMessage(mood.Stressed)}, got)
	assert.True(t, e.hist.Recent(1)[0].Fallback)
}

func TestStream_FallbackAfterPartialOutput(t *testing.T) {
	e := newEnv(&fakeProvider{chunks: []string{"Je "}, err: errors.New("reset")})
	r, _ := collect(t, e, Request{Message: "x", Mood: mood.Normal})
	assert.Equal(t, "Je \n\n"+rules.FallbackMessage(mood.Normal), r.Text)
}

func TestStream_NoProvider(t *testing.T) {
	e := newEnv(nil)
	r, _ := collect(t, e, Request{Message: "x", Mood: mood.Energetic})
	assert.True(t, r.Fallback)
	assert.Equal(t, rules.FallbackMessage(mood.Energetic), r.Text)
}

func TestStream_EmitErrorStops(t *testing.T) {
	e := newEnv(&fakeProvider{chunks: []string{"a", "b"}})
	stop := errors.New("client gone")
	_, err := e.svc.Stream(context.Background(), Request{Message: "x"}, func(string) error { return stop })
	assert.ErrorIs(t, err, stop)
	assert.Empty(t, e.hist.Recent(0))
}

func TestStream_EmptyMessage(t *testing.T) {
	e := newEnv(nil)
	_, err := e.svc.Ask(context.Background(), Request{Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestHistory_Capped(t *testing.T) {
	e := newEnv(nil)
	for i := 0; i < MaxHistory+5; i++ {
		e.hist.Append(Message{Role: RoleUser, Content: fmt.Sprint(i)})
	}
	all := e.hist.Recent(0)
	require.Len(t, all, MaxHistory)
	assert.Equal(t, "5", all[0].Content)
	assert.Len(t, e.hist.Recent(3), 3)

	e.hist.Clear()
	assert.Empty(t, e.hist.Recent(0))
}

func TestHistory_ConcurrentAppend(t *testing.T) {
	kv := kvstore.NewMemoryStore(0)
	h := NewHistory(kv, zap.NewNop())

	const n = MaxHistory / 2
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Append(Message{Role: RoleUser, Content: fmt.Sprint(i)}, Message{Role: RoleAssistant, Content: "ok"})
		}(i)
	}
	wg.Wait()

	assert.Len(t, h.Recent(0), 2*n)
	assert.Len(t, NewHistory(kv, zap.NewNop()).Recent(0), 2*n)

	for i := 0; i < 2*MaxHistory; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Append(Message{Role: RoleUser, Content: "more"})
		}()
	}
	wg.Wait()
	assert.Len(t, h.Recent(0), MaxHistory)
}

func TestNewGenAIProvider_RequiresKey(t *testing.T) {
	_, err := NewGenAIProvider(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
