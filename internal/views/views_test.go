package views

import (
	"testing"

	"github.com/dekarrin/vadm/internal/apitest"
	"github.com/dekarrin/vadm/internal/client"
	"github.com/dekarrin/vadm/internal/i18n"
	"github.com/dekarrin/vadm/internal/notify"
)

// testEnv is a client wired to a scripted backend, along with the deps a
// controller gets in tests.
type testEnv struct {
	backend *apitest.Backend
	client  *client.Client
	notes   *notify.Recorder
	deps    Deps
}

func newTestEnv(t *testing.T, confirm bool) testEnv {
	backend := apitest.New(t)
	notes := &notify.Recorder{}

	return testEnv{
		backend: backend,
		client:  client.New(backend.URL()),
		notes:   notes,
		deps: Deps{
			Notify:  notes,
			Confirm: notify.Always(confirm),
			Texts:   i18n.New(i18n.English),
		},
	}
}
