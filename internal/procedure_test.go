package internal_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsdesk/internal"
)

func noop(name string, provides ...internal.Decl) internal.Stage {
	return internal.Stage{
		Name:     name,
		Provides: provides,
		Run:      func(internal.Context) internal.Result { return internal.Continue() },
	}
}

func stageNames(p internal.Procedure) []string {
	var names []string
	for _, s := range p.Stages() {
		names = append(names, s.Name)
	}
	return names
}

func TestExtendNeverMutatesTheReceiver(t *testing.T) {
	t.Parallel()

	base := internal.Base()
	shared := base.Extend(noop("auth"))
	left := shared.Extend(noop("left"))
	right := shared.Extend(noop("right"))

	assert.Equal(t, 0, base.Len())
	assert.Equal(t, []string{"auth"}, stageNames(shared))
	assert.Equal(t, []string{"auth", "left"}, stageNames(left))
	assert.Equal(t, []string{"auth", "right"}, stageNames(right))
}

func TestExtendChecksDeclarations(t *testing.T) {
	t.Parallel()

	user := internal.NewKey[string]("user")
	userID := internal.NewKey[int]("user")

	t.Run("missing requirement", func(t *testing.T) {
		t.Parallel()
		require.PanicsWithValue(t,
			`newsdesk: stage "needs_user" requires user(string), which the procedure does not guarantee`,
			func() {
				internal.Base().Extend(internal.Stage{
					Name:     "needs_user",
					Requires: []internal.Decl{user.Decl()},
					Run:      func(internal.Context) internal.Result { return internal.Continue() },
				})
			})
	})

	t.Run("requirement of another type", func(t *testing.T) {
		t.Parallel()
		p := internal.Base().Extend(noop("load", userID.Decl()))
		require.Panics(t, func() {
			p.Extend(internal.Stage{
				Name:     "needs_user",
				Requires: []internal.Decl{user.Decl()},
				Run:      func(internal.Context) internal.Result { return internal.Continue() },
			})
		})
	})

	t.Run("conflicting provide", func(t *testing.T) {
		t.Parallel()
		p := internal.Base().Extend(noop("load", user.Decl()))
		require.Panics(t, func() { p.Extend(noop("reload", userID.Decl())) })
		require.NotPanics(t, func() { p.Extend(noop("refresh", user.Decl())) })
	})

	t.Run("nil run", func(t *testing.T) {
		t.Parallel()
		require.Panics(t, func() { internal.Base().Extend(internal.Stage{Name: "empty"}) })
	})
}

func TestProcedureGuarantees(t *testing.T) {
	t.Parallel()

	tenant := internal.NewKey[string]("tenant")
	p := internal.WithBody[echoInput](internal.Base()).Extend(noop("", tenant.Decl()))

	assert.True(t, p.Guarantees(tenant.Decl()))
	assert.True(t, p.Guarantees(internal.InputKey[echoInput]().Decl()))
	assert.False(t, p.Guarantees(internal.NewKey[int]("tenant").Decl()))

	provides := p.Provides()
	require.Len(t, provides, 2)
	assert.Equal(t, "input", provides[0].Name)
	assert.Equal(t, "tenant", provides[1].Name)
	assert.Equal(t, []string{"validate_body", "stage_1"}, stageNames(p))
}

func TestFinalizeChecksHandlerTypes(t *testing.T) {
	t.Parallel()

	type other struct {
		Name string `json:"name"`
	}

	withBody := internal.WithBody[echoInput](internal.Base())

	t.Run("input type mismatch", func(t *testing.T) {
		t.Parallel()
		require.Panics(t, func() {
			internal.Finalize(withBody, http.MethodPost, "/x",
				func(internal.Context, other, internal.Empty) (string, error) { return "", nil })
		})
	})

	t.Run("typed input without validation", func(t *testing.T) {
		t.Parallel()
		require.Panics(t, func() {
			internal.Finalize(internal.Base(), http.MethodPost, "/x",
				func(internal.Context, echoInput, internal.Empty) (string, error) { return "", nil })
		})
	})

	t.Run("validated input ignored by handler", func(t *testing.T) {
		t.Parallel()
		require.Panics(t, func() {
			internal.Finalize(withBody, http.MethodPost, "/x",
				func(internal.Context, internal.Empty, internal.Empty) (string, error) { return "", nil })
		})
	})

	t.Run("unsupported method", func(t *testing.T) {
		t.Parallel()
		require.Panics(t, func() {
			internal.Finalize(internal.Base(), "BREW", "/x",
				func(internal.Context, internal.Empty, internal.Empty) (string, error) { return "", nil })
		})
	})

	t.Run("method is normalised", func(t *testing.T) {
		t.Parallel()
		ep := internal.Finalize(withBody, "post", "/x",
			func(internal.Context, echoInput, internal.Empty) (string, error) { return "", nil },
			internal.Named("Echo"), internal.Summary("echoes"))
		assert.Equal(t, http.MethodPost, ep.Method())
		assert.Equal(t, "Echo", ep.Name())
		assert.Equal(t, "echoes", ep.Summary())
		assert.Equal(t, http.StatusOK, ep.Status())
		assert.Equal(t, []string{"validate_body"}, ep.StageNames())
	})
}
