package session

import (
	"context"
	"fmt"

	"github.com/roach88/gauntlet/internal/domain"
	"github.com/roach88/gauntlet/internal/store"
)

// CreateContest selects problems for a new single-user contest and
// persists it. The selection happens before the store transaction so the
// (potentially slow) judge calls for exclude-already-solved never run
// under the store lock.
func (s *Service) CreateContest(ctx context.Context, in CreateInput) (*domain.Contest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	seed := in.Seed
	if seed == "" {
		seed = s.newID()
	}

	pool, err := s.buildPool(ctx, &in)
	if err != nil {
		return nil, err
	}
	problems, err := selectProblems(&in, seed, pool)
	if err != nil {
		return nil, err
	}

	now := s.now()
	contest := domain.Contest{
		ID:              s.newID(),
		OwnerUserID:     in.OwnerUserID,
		Name:            in.Name,
		Status:          domain.StatusCreated,
		CreatedAt:       now,
		DurationSeconds: int64(in.DurationMinutes) * 60,
		Seed:            seed,
		Problems:        problems,
		Progress:        domain.NewProgress(),
	}
	if in.StartImmediately {
		contest.Status = domain.StatusRunning
		contest.StartedAt = now
	}

	err = s.store.Update(ctx, func(doc *domain.Document) error {
		user := doc.FindUser(in.OwnerUserID)
		if user == nil {
			return domain.NotFound("user %s not found", in.OwnerUserID)
		}
		doc.Contests = append(doc.Contests, contest)
		doc.AppendActivity(domain.ActivityEvent{
			ID:          s.newID(),
			At:          now,
			Kind:        domain.ActivityContest,
			ActorUserID: in.OwnerUserID,
			Target:      domain.ActivityTarget{Type: "contest", ID: contest.ID},
			Message:     fmt.Sprintf("%s created contest %q", user.Username, contest.Name),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("contest created",
		"contest_id", contest.ID,
		"owner", in.OwnerUserID,
		"problems", len(problems),
		"seed", seed)
	return &contest, nil
}

// ListContests returns the caller's contests, newest first.
func (s *Service) ListContests(ctx context.Context, ownerUserID string) ([]domain.Contest, error) {
	doc, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Contest
	for i := len(doc.Contests) - 1; i >= 0; i-- {
		if doc.Contests[i].OwnerUserID == ownerUserID {
			out = append(out, doc.Contests[i])
		}
	}
	return out, nil
}

// GetContest returns one contest owned by the caller.
func (s *Service) GetContest(ctx context.Context, ownerUserID, contestID string) (*domain.Contest, error) {
	doc, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	c := doc.FindContest(ownerUserID, contestID)
	if c == nil {
		return nil, domain.NotFound("contest %s not found", contestID)
	}
	return c, nil
}

// StartContest moves a created contest to running. Progress is reset so
// a restart after a failed first attempt begins from a clean slate.
func (s *Service) StartContest(ctx context.Context, ownerUserID, contestID string) (*domain.Contest, error) {
	return store.UpdateResult(s.store, ctx, func(doc *domain.Document) (*domain.Contest, error) {
		c := doc.FindContest(ownerUserID, contestID)
		if c == nil {
			return nil, domain.NotFound("contest %s not found", contestID)
		}
		if c.Status != domain.StatusCreated {
			return nil, domain.InvalidState("contest %s is %s, expected %s", contestID, c.Status, domain.StatusCreated)
		}
		c.Status = domain.StatusRunning
		c.StartedAt = s.now()
		c.Progress = domain.NewProgress()
		return c, nil
	})
}

// FinishContest moves a running contest to finished.
func (s *Service) FinishContest(ctx context.Context, ownerUserID, contestID string) (*domain.Contest, error) {
	return store.UpdateResult(s.store, ctx, func(doc *domain.Document) (*domain.Contest, error) {
		c := doc.FindContest(ownerUserID, contestID)
		if c == nil {
			return nil, domain.NotFound("contest %s not found", contestID)
		}
		if c.Status != domain.StatusRunning {
			return nil, domain.InvalidState("contest %s is %s, expected %s", contestID, c.Status, domain.StatusRunning)
		}
		c.Status = domain.StatusFinished
		c.FinishedAt = s.now()
		return c, nil
	})
}

// DeleteContest removes a contest. Running contests must be finished
// first so an active poll round never races a disappearing session.
func (s *Service) DeleteContest(ctx context.Context, ownerUserID, contestID string) error {
	return s.store.Update(ctx, func(doc *domain.Document) error {
		for i := range doc.Contests {
			c := &doc.Contests[i]
			if c.ID != contestID || c.OwnerUserID != ownerUserID {
				continue
			}
			if c.Status == domain.StatusRunning {
				return domain.InvalidState("contest %s is running; finish it before deleting", contestID)
			}
			doc.Contests = append(doc.Contests[:i], doc.Contests[i+1:]...)
			return nil
		}
		return domain.NotFound("contest %s not found", contestID)
	})
}
