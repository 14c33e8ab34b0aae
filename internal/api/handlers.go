package api

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/terraincognita07/vitaminpack/internal/fulfillment"
	"github.com/terraincognita07/vitaminpack/internal/gate"
	"github.com/terraincognita07/vitaminpack/internal/mailer"
	"github.com/terraincognita07/vitaminpack/internal/services"
	"github.com/terraincognita07/vitaminpack/internal/templates"
	"go.uber.org/zap"
)

// MagicLinkSender delivers a sign-in link to the owner of the address.
type MagicLinkSender interface {
	SendMagicLink(ctx context.Context, email string, link string) error
}

type Dependencies struct {
	Gate         *gate.Gate
	Auth         *services.AuthService
	Sessions     *services.SessionService
	Profiles     *services.ProfileService
	Fulfillment  *fulfillment.Client
	MagicLinks   MagicLinkSender
	Metrics      prometheus.Gatherer
	Logger       *zap.Logger
	PublicURL    string
	CookieSecure bool
}

type Handler struct {
	gate         *gate.Gate
	authService  *services.AuthService
	sessions     *services.SessionService
	profiles     *services.ProfileService
	fulfillment  *fulfillment.Client
	magicLinks   MagicLinkSender
	metrics      prometheus.Gatherer
	logger       *zap.Logger
	publicURL    string
	cookieSecure bool
	templates    map[string]*template.Template
}

var pages = []string{
	"home",
	"login",
	"signup",
	"onboarding",
	"dashboard",
	"test_pack",
	"not_found",
}

func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Gate == nil || deps.Auth == nil || deps.Sessions == nil || deps.Profiles == nil {
		return nil, errors.New("gate, auth, session and profile services are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var magicLinks MagicLinkSender = mailer.NewLogSender(logger.Named("mailer"))
	if deps.MagicLinks != nil {
		magicLinks = deps.MagicLinks
	}

	funcMap := template.FuncMap{
		"join": strings.Join,
		"hasGoal": func(goals []string, goal string) bool {
			return slices.Contains(goals, goal)
		},
	}

	parsed := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New("base").Funcs(funcMap).ParseFS(templates.Files, "base.html", page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		parsed[page] = tmpl
	}

	return &Handler{
		gate:         deps.Gate,
		authService:  deps.Auth,
		sessions:     deps.Sessions,
		profiles:     deps.Profiles,
		fulfillment:  deps.Fulfillment,
		magicLinks:   magicLinks,
		metrics:      deps.Metrics,
		logger:       logger,
		publicURL:    strings.TrimSuffix(deps.PublicURL, "/"),
		cookieSecure: deps.CookieSecure,
		templates:    parsed,
	}, nil
}
