package cli

import (
	"context"
	"log/slog"
	"net/url"

	"pulse-cli/internal/api"
	"pulse-cli/internal/collection"
	"pulse-cli/internal/config"
	"pulse-cli/internal/metrics"
	"pulse-cli/internal/notify"
	"pulse-cli/internal/session"
	"pulse-cli/internal/store"

	"github.com/redis/go-redis/v9"
)

// runtime is everything one command invocation needs, built from the resolved config.
// Nothing is global: the session and the collection live exactly as long as the command.
type runtime struct {
	cfg     *config.Config
	log     *slog.Logger
	local   store.Store
	state   store.SessionStore
	session *session.Manager
	client  *api.Client
	notes   *notify.Queue
	coll    *collection.Controller
	metrics *metrics.Metrics
}

func openRuntime(ctx context.Context, app *App) (*runtime, error) {
	cfg := app.cfg
	if cfg == nil {
		var err error
		if cfg, err = config.Load(); err != nil {
			return nil, err
		}
	}
	log := slog.Default()
	m := metrics.New()

	local := store.Store{Dir: cfg.Dir}
	var state store.SessionStore = local
	if cfg.SessionBackend == config.BackendRedis {
		rc := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		state = store.NewRedisSessionStore(rc, sessionNamespace(cfg.APIURL))
	}

	sess := session.New(state, log)
	client := api.New(api.Options{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		Tokens:    sess,
		Metrics:   m,
		Logger:    log,
	})
	sess.UseAuthenticator(client)
	sess.Restore(ctx)

	notes := notify.New(cfg.NotificationTTL, m)
	coll := collection.New(collection.Options{
		Repo:          client,
		Notifications: notes,
		Auth:          sess,
		Metrics:       m,
		Logger:        log,
	})

	return &runtime{
		cfg:     cfg,
		log:     log,
		local:   local,
		state:   state,
		session: sess,
		client:  client,
		notes:   notes,
		coll:    coll,
		metrics: m,
	}, nil
}

func (rt *runtime) Close() error {
	return rt.state.Close()
}

// requireSession fails fast when no usable session was restored.
func (rt *runtime) requireSession() error {
	if !rt.session.Authenticated() {
		return errNotSignedIn
	}
	return nil
}

// sessionNamespace keys shared redis sessions by API host so two servers never mix.
func sessionNamespace(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil || u.Host == "" {
		return "default"
	}
	return u.Host
}
