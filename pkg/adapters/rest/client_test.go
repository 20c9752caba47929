package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/broilr/pkg/adapters/rest"
	"github.com/aretw0/broilr/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService records the last request body per path and answers with canned JSON.
type fakeService struct {
	t        *testing.T
	bodies   map[string]map[string]any
	replies  map[string]string
	statuses map[string]int
}

func newFakeService(t *testing.T) (*fakeService, *rest.Client) {
	f := &fakeService{
		t:        t,
		bodies:   make(map[string]map[string]any),
		replies:  make(map[string]string),
		statuses: make(map[string]int),
	}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, rest.New(srv.URL + "/")
}

func (f *fakeService) serve(w http.ResponseWriter, r *http.Request) {
	assert.Equal(f.t, http.MethodPost, r.Method)
	assert.Equal(f.t, "application/json", r.Header.Get("Content-Type"))

	var body map[string]any
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
	f.bodies[r.URL.Path] = body

	if code, ok := f.statuses[r.URL.Path]; ok {
		w.WriteHeader(code)
	}
	_, _ = w.Write([]byte(f.replies[r.URL.Path]))
}

func TestClient_Login(t *testing.T) {
	f, c := newFakeService(t)
	ctx := context.Background()

	f.replies["/login"] = `{"success": true, "message": "Login successful"}`
	require.NoError(t, c.Login(ctx, "julia", "butter"))
	assert.Equal(t, map[string]any{"username": "julia", "password": "butter"}, f.bodies["/login"])

	f.replies["/login"] = `{"success": false, "message": "Incorrect password"}`
	err := c.Login(ctx, "julia", "margarine")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "Incorrect password")
}

func TestClient_SignupExisting(t *testing.T) {
	f, c := newFakeService(t)
	f.replies["/signup"] = `{"success": false, "message": "Username already exists"}`

	err := c.Signup(context.Background(), "julia", "butter")
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestClient_ListRecipes(t *testing.T) {
	f, c := newFakeService(t)
	f.replies["/load_recipes"] = `{"recipes": [
		{"recipe_name": "Paneer Butter Masala",
		 "ingredients": [{"name": "Butter", "quantity": "2 tbsp"}, {"name": "Paneer", "quantity": 200}],
		 "steps": [{"step_number": 1, "instruction": "Heat butter.", "estimated_time": "2 min", "key_ingredients_or_tools": ["butter", "pan"]}]}
	]}`

	recipes, err := c.ListRecipes(context.Background(), "julia")
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Paneer Butter Masala", recipes[0].Name)
	assert.Equal(t, "200", recipes[0].Ingredients[1].Quantity)
	assert.Equal(t, domain.Minutes(2), recipes[0].Steps[0].Minutes)
	assert.Equal(t, map[string]any{"username": "julia"}, f.bodies["/load_recipes"])

	f.replies["/load_recipes"] = `{"recipes": null}`
	recipes, err = c.ListRecipes(context.Background(), "julia")
	require.NoError(t, err)
	assert.NotNil(t, recipes)
	assert.Empty(t, recipes)
}

func TestClient_Followups(t *testing.T) {
	f, c := newFakeService(t)
	f.replies["/followups"] = `{"questions": ["Spicy or mild?", "  ", "Servings?"]}`

	qs, err := c.Followups(context.Background(), "curry")
	require.NoError(t, err)
	assert.Equal(t, []string{"Spicy or mild?", "Servings?"}, qs)
	assert.Equal(t, "curry", f.bodies["/followups"]["dish"])
}

func TestClient_GenerateRecipe(t *testing.T) {
	f, c := newFakeService(t)
	f.replies["/generate_recipe"] = `{"recipe": {"recipe_name": "pasta", "ingredients": [], "steps": [{"step_number": 1, "instruction": "Boil."}]}}`

	answers := []domain.Answer{
		{Question: "How many servings?", Text: "two"},
		{Question: "How many servings?", Text: "four"},
	}
	recipe, err := c.GenerateRecipe(context.Background(), "pasta", answers, "julia")
	require.NoError(t, err)
	assert.Equal(t, "pasta", recipe.Name)

	body := f.bodies["/generate_recipe"]
	assert.Equal(t, "pasta", body["dish"])
	assert.Equal(t, "julia", body["username"])
	assert.Equal(t, map[string]any{
		"How many servings?":     "two",
		"How many servings? (2)": "four",
	}, body["answers"])

	f.replies["/generate_recipe"] = `{"recipe": null}`
	_, err = c.GenerateRecipe(context.Background(), "pasta", answers, "julia")
	assert.ErrorIs(t, err, domain.ErrEmptyResult)
}

func TestClient_AskStep(t *testing.T) {
	f, c := newFakeService(t)
	f.replies["/ask_step"] = `{"answer": " About two minutes. ", "history": [{"role": "user", "parts": ["How long?"]}, {"role": "model", "parts": ["About two minutes."]}]}`

	ans, err := c.AskStep(context.Background(), "How long?", domain.Step{Number: 1, Instruction: "Heat butter."}, nil)
	require.NoError(t, err)
	assert.Equal(t, "About two minutes.", ans.Answer)
	assert.Len(t, ans.History, 2)

	body := f.bodies["/ask_step"]
	step := body["step"].(map[string]any)
	assert.Equal(t, []any{}, step["key_ingredients_or_tools"])
	assert.Equal(t, []any{}, body["history"])
}

func TestClient_DeleteRecipe(t *testing.T) {
	f, c := newFakeService(t)
	f.replies["/delete_recipe"] = `{"success": true, "message": "Recipe deleted."}`
	require.NoError(t, c.DeleteRecipe(context.Background(), "julia", "Soup"))
	assert.Equal(t, map[string]any{"username": "julia", "recipe_name": "Soup"}, f.bodies["/delete_recipe"])

	f.statuses["/delete_recipe"] = http.StatusNotFound
	f.replies["/delete_recipe"] = `{"success": false, "message": "Recipe not found."}`
	err := c.DeleteRecipe(context.Background(), "julia", "Soup")
	assert.ErrorIs(t, err, domain.ErrNoMatch)
	assert.ErrorIs(t, err, domain.ErrBackend)
}

func TestClient_SaveRecipe(t *testing.T) {
	f, c := newFakeService(t)
	f.replies["/save_recipe"] = `{"message": "✅ Recipe saved successfully!"}`

	require.NoError(t, c.SaveRecipe(context.Background(), domain.Recipe{Name: "Soup"}, "julia"))
	recipe := f.bodies["/save_recipe"]["recipe"].(map[string]any)
	assert.Equal(t, "Soup", recipe["recipe_name"])
}

func TestClient_Failures(t *testing.T) {
	cases := []struct {
		name      string
		handler   http.HandlerFunc
		retryable bool
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("oops"))
		}, true},
		{"bad request", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}, false},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not-json"))
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			c := rest.New(srv.URL)

			_, err := c.Followups(context.Background(), "soup")
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrBackend)

			var se *rest.StatusError
			if tc.retryable {
				require.ErrorAs(t, err, &se)
				assert.True(t, se.Retryable())
			}
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	c := rest.New("http://example.invalid", rest.WithHTTPClient(&http.Client{
		Timeout: time.Second,
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, context.DeadlineExceeded
		}),
	}))

	_, err := c.ListRecipes(context.Background(), "julia")
	assert.ErrorIs(t, err, domain.ErrBackend)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
