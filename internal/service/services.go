package service

import (
	"github.com/deppfellow/orgdir/internal/lib/cache"
	"github.com/deppfellow/orgdir/internal/lib/job"
	"github.com/deppfellow/orgdir/internal/repository"
	"github.com/deppfellow/orgdir/internal/server"
)

type Services struct {
	Auth      *AuthService
	Loader    *LoaderService
	Directory *DirectoryService
	Job       *job.JobService
}

// NewServices wires the services on top of the server's connections.
// The search cache is only used when Redis is configured.
func NewServices(s *server.Server, repos *repository.Repositories, fetcher Fetcher) *Services {
	var (
		invalidator CacheInvalidator
		searchCache SearchCache
	)
	if s.Redis != nil {
		c := cache.NewSearchCache(s.Redis, s.Config.Cache.SearchTTL)
		invalidator, searchCache = c, c
	}

	return &Services{
		Auth: NewAuthService(s),
		Loader: NewLoaderService(
			fetcher,
			s.DB,
			repos.Departments,
			repos.People,
			invalidator,
			s.Config.Loader.DepartmentMatch,
			s.Logger,
		),
		Directory: NewDirectoryService(repos.People, searchCache, s.Logger),
		Job:       s.Job,
	}
}
