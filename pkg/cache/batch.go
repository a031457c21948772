package cache

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/photonkit/pkg/component"
)

// Job is one GetOrBuild request for BuildAll.
type Job struct {
	Factory string
	Name    string
	Params  any
	Build   BuildFunc
}

// BuildAll runs jobs in parallel and returns the components in job order.
// The first failure cancels jobs that have not started yet.
func (c *Cache) BuildAll(ctx context.Context, jobs []Job) ([]*component.Component, error) {
	out := make([]*component.Component, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			comp, err := c.GetOrBuildNamed(job.Factory, job.Name, job.Params, job.Build)
			if err != nil {
				return err
			}
			out[i] = comp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
