package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/folio"
	"github.com/hupe1980/folio/analytics"
	"github.com/hupe1980/folio/classifier"
	"github.com/hupe1980/folio/core"
	"github.com/hupe1980/folio/internal/config"
	"github.com/hupe1980/folio/internal/sqlitedb"
	"github.com/hupe1980/folio/logging"
	"github.com/hupe1980/folio/memory"
	"github.com/hupe1980/folio/model"
	"github.com/hupe1980/folio/model/anthropic"
	"github.com/hupe1980/folio/model/openai"
	"github.com/hupe1980/folio/notify"
	"github.com/hupe1980/folio/policy"
	"github.com/hupe1980/folio/session"
)

// app bundles the assistant with the resources it owns.
type app struct {
	folio *folio.Folio
	db    *sql.DB
}

func (a *app) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// newApp wires the assistant from configuration.
func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*app, error) {
	a := &app{}

	var (
		states      core.StateStore
		sink        core.AnalyticsSink
		confessions core.ConfessionStore
	)

	switch cfg.Storage {
	case "sqlite":
		db, err := sqlitedb.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		a.db = db

		store, err := session.NewSQLiteStore(ctx, db)
		if err != nil {
			return nil, errors.Join(err, a.Close())
		}
		events, err := analytics.NewSQLiteSink(ctx, db)
		if err != nil {
			return nil, errors.Join(err, a.Close())
		}
		states, sink, confessions = store, analytics.Multi{events, analytics.LogSink{Logger: logger}}, events
	default:
		mem := analytics.NewInMemorySink()
		states, sink, confessions = session.NewInMemoryStore(), analytics.Multi{mem, analytics.LogSink{Logger: logger}}, mem
	}

	policies := policy.Default()
	var cls core.Classifier
	if cfg.PoliciesPath != "" {
		f, err := policy.LoadFile(cfg.PoliciesPath)
		if err != nil {
			return nil, errors.Join(err, a.Close())
		}
		if policies, err = f.Table(); err != nil {
			return nil, errors.Join(err, a.Close())
		}
		cls = classifier.New(f.Keywords)
	}

	llm, embedder := providers(cfg)

	var email core.EmailSender
	if cfg.EmailEnabled() {
		email = notify.NewRateLimitedEmail(notify.NewSMTPEmail(cfg.SMTP.Addr, cfg.SMTP.From, func(o *notify.SMTPOptions) {
			o.Username = cfg.SMTP.Username
			o.Password = cfg.SMTP.Password
		}), notify.DefaultRateLimitOptions())
	}

	var sms core.SMSSender
	if cfg.SMSEnabled() {
		sms = notify.NewRateLimitedSMS(
			notify.NewTwilioSMS(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From),
			notify.DefaultRateLimitOptions(),
		)
	}

	a.folio = folio.New(func(o *folio.Options) {
		o.EngineConfig = cfg.EngineConfig()
		o.Model = llm
		o.Stream = cfg.Stream
		o.Embedder = embedder
		o.Policies = policies
		o.Classifier = cls
		o.Email = email
		o.SMS = sms
		o.Confessions = confessions
		o.OwnerName = cfg.Owner.Name
		o.OwnerEmail = cfg.Owner.Email
		o.OwnerPhone = cfg.Owner.Phone
		if cfg.Owner.ResumeLinkTemplate != "" {
			o.ResumeLinkTemplate = cfg.Owner.ResumeLinkTemplate
		}
		o.States = states
		o.Analytics = sink
		o.Logger = logger
	})

	if cfg.PassagesPath != "" {
		passages, err := memory.LoadPassages(cfg.PassagesPath)
		if err != nil {
			return nil, errors.Join(err, a.Close())
		}
		if err := a.folio.Index(ctx, passages...); err != nil {
			return nil, errors.Join(fmt.Errorf("index passages: %w", err), a.Close())
		}
		logger.Info("Passages indexed", "count", len(passages))
	}

	return a, nil
}

// providers returns the answer model and the query embedder for the
// configured provider. Anthropic has no embedding endpoint, so it pairs with
// the local hashing embedder.
func providers(cfg *config.Config) (model.Model, core.Embedder) {
	switch cfg.Provider {
	case "openai":
		m := openai.NewModel(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		})
		e := openai.NewEmbedder(func(o *openai.EmbedderOptions) {
			if cfg.EmbeddingModel != "" {
				o.Model = cfg.EmbeddingModel
			}
		})
		return m, e
	case "anthropic":
		m := anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = sdkanthropic.Model(cfg.Model)
			}
		})
		return m, memory.NewHashEmbedder(0)
	default:
		return model.NewMockModel("mock"), memory.NewHashEmbedder(0)
	}
}
