package routes

import (
	"adaptrack-server/internal/lists"
	"adaptrack-server/internal/match"
	"adaptrack-server/internal/notify"
	"adaptrack-server/internal/recommend"
	"adaptrack-server/internal/repos"
	"adaptrack-server/pkg/cache"
	"adaptrack-server/pkg/session"
)

// Deps holds the dependencies required by the route handlers.
type Deps struct {
	Repo          *repos.Repository
	Cache         cache.Cache
	Sessions      session.Codec
	Matcher       *match.Matcher
	Lists         *lists.Service
	Recommend     *recommend.Service
	Notifications *notify.Registry
}
