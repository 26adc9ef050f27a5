// components/users/users.go
//
// Cadastro users component – registration form host.
//
// Context
//   This component hosts the registration form.  It mounts one
//   form.Machine per page load in the session Store, turns browser events
//   into form events, and implements the form callbacks: an accepted
//   submit creates or updates a row through the user repository, a delete
//   removes it, and the aggregate notice becomes an error dialog.
//
// Routes
//   GET  /                   create-mode page
//   GET  /users/{id}         edit-mode page, seeded from the database
//   POST /form/{sid}/event   one event, answers with the form fragment
//   POST /form/{sid}/submit  no-JS fallback, answers with the full page
//   POST /form/{sid}/delete  delete, then redirect to /
//   GET  /form/{sid}/ws      WebSocket carrying JSON events
//   GET  /api/form/{sid}     JSON snapshot of the form state
//   GET  /static/*           form script and stylesheet
//
//------------------------------------------------------------------------------

package users

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/cadastro/internal/component"
	"github.com/yanizio/cadastro/internal/form"
	"github.com/yanizio/cadastro/internal/session"
	"github.com/yanizio/cadastro/internal/user"
	"github.com/yanizio/cadastro/internal/view"
)

// Name is the component key and the view namespace.
const Name = "users"

// writeTimeout bounds one repository call made from a form callback.
const writeTimeout = 5 * time.Second

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Repository is the persistence used by the callbacks.
// *user.Repository satisfies it.
type Repository interface {
	Create(ctx context.Context, r *user.Record) (int64, error)
	Update(ctx context.Context, r *user.Record) error
	Delete(ctx context.Context, id int64) error
	ByID(ctx context.Context, id int64) (*user.Record, error)
}

// Compile-time assertions.
var (
	_ component.Component = (*Component)(nil)
	_ Repository          = (*user.Repository)(nil)
)

// Component wires the form to HTTP.
type Component struct {
	repo       Repository
	store      *session.Store
	def        *form.Definition
	signer     *form.TokenSigner
	bcryptCost int
	formOpts   []form.Option
}

// Deps are the collaborators of a Component.
type Deps struct {
	Repo       Repository
	Store      *session.Store
	Definition *form.Definition
	Signer     *form.TokenSigner
	BcryptCost int
	FormOpts   []form.Option // passed to every mounted Machine
}

// New builds a ready Component.  cmd/web uses the registered instance and
// Init instead; New serves tests and embedders.
func New(d Deps) *Component {
	c := &Component{}
	c.setup(d)
	return c
}

func (c *Component) setup(d Deps) {
	c.repo = d.Repo
	c.store = d.Store
	c.def = d.Definition
	c.signer = d.Signer
	c.bcryptCost = d.BcryptCost
	c.formOpts = d.FormOpts

	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err) // embedded path is static
	}
	view.Register(Name, sub)
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return Name }

// Migrations returns the users table DDL for driver.
func (c *Component) Migrations(driver string) []string { return user.Migrations(driver) }

// Init builds the repository, session store, form definition, and CSRF
// signer from the shared resources.
func (c *Component) Init(env component.Env) error {
	cfg := env.GetConfig()

	def, err := form.DefaultDefinition()
	if p := cfg.Form.Definition; p != "" {
		def, err = form.LoadDefinition(p)
	}
	if err != nil {
		return fmt.Errorf("users: form definition: %w", err)
	}

	c.setup(Deps{
		Repo: user.NewRepository(env.GetDB()),
		Store: session.New(session.Options{
			IdleTTL:       cfg.Session.IdleTTL,
			MaxEntries:    cfg.Session.MaxEntries,
			EvictInterval: cfg.Session.EvictInterval,
			EventRate:     cfg.Session.EventRate,
			EventBurst:    cfg.Session.EventBurst,
		}),
		Definition: def,
		Signer:     form.NewTokenSigner(cfg.Form.CSRFKey),
		BcryptCost: cfg.Form.BcryptCost,
	})
	zap.S().Infow("users component ready", "form", def.ID, "fields", len(def.Fields))
	return nil
}

// Close stops the session evictor.
func (c *Component) Close() error {
	if c.store != nil {
		c.store.Close()
	}
	return nil
}

// Routes builds and returns the router mounted at “/”.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.handleCreatePage)
	r.Get("/users/{id}", c.handleEditPage)

	r.Route("/form/{sid}", func(fr chi.Router) {
		fr.Post("/event", c.handleEvent)
		fr.Post("/submit", c.handleSubmit)
		fr.Post("/delete", c.handleDelete)
		fr.Get("/ws", c.handleWS)
	})
	r.Get("/api/form/{sid}", c.handleSnapshot)

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	return r
}

// Register component at program start.
func init() { component.Register(&Component{}) }
