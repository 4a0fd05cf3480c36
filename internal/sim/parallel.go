package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Factory builds an independent simulator for one ensemble member.
type Factory func(member int) (*Simulator, error)

// Ensemble runs several independent simulations concurrently. Each member
// owns its own world, so no state is shared between goroutines.
type Ensemble struct {
	factory Factory
	members int
	limit   int
}

func NewEnsemble(factory Factory, members int) *Ensemble {
	return &Ensemble{factory: factory, members: members}
}

// SetLimit caps the number of members running at once; n <= 0 means no cap.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.members)

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i := 0; i < e.members; i++ {
		g.Go(func() error {
			s, err := e.factory(i)
			if err != nil {
				return fmt.Errorf("ensemble member %d: %w", i, err)
			}
			defer s.World().Close()

			res, err := s.Run(ctx, cfg)
			if err != nil {
				return fmt.Errorf("ensemble member %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
