package poll

import (
	"context"

	"github.com/roach88/gauntlet/internal/domain"
	"github.com/roach88/gauntlet/internal/store"
)

// RefreshContest runs one poll round for a contest. Refreshing a
// contest that is not running is a no-op returning zero flags, not an
// error: the caller learns nothing was polled. An integration failure
// likewise degrades to a false flag for that platform only.
func (o *Orchestrator) RefreshContest(ctx context.Context, ownerUserID, contestID string) (*domain.Contest, PolledFlags, error) {
	doc, err := o.store.Snapshot(ctx)
	if err != nil {
		return nil, PolledFlags{}, err
	}
	c := doc.FindContest(ownerUserID, contestID)
	if c == nil {
		return nil, PolledFlags{}, domain.NotFound("contest %s not found", contestID)
	}
	if c.Status != domain.StatusRunning {
		return c, PolledFlags{}, nil
	}
	user := doc.FindUser(ownerUserID)
	if user == nil {
		return nil, PolledFlags{}, domain.NotFound("user %s not found", ownerUserID)
	}

	fetch := o.fetchSubject(ctx, c.Problems, c.StartedAt, c.Progress, user)
	flags := fetch.flags()

	outcome := newMergeOutcome()
	merged, err := store.UpdateResult(o.store, ctx, func(live *domain.Document) (*domain.Contest, error) {
		lc := live.FindContest(ownerUserID, contestID)
		if lc == nil {
			return nil, domain.NotFound("contest %s not found", contestID)
		}
		if lc.Status != domain.StatusRunning {
			return lc, nil
		}
		lu := live.FindUser(ownerUserID)
		if lu == nil {
			return nil, domain.NotFound("user %s not found", ownerUserID)
		}
		o.applySubject(live, lc.Problems, lc.StartedAt, &lc.Progress, lu, fetch, "contest", contestID, outcome)
		return lc, nil
	})
	if err != nil {
		return nil, PolledFlags{}, err
	}

	o.publish([]string{ownerUserID}, "contest_update", contestID, outcome)
	return merged, flags, nil
}

// RefreshRoom runs one poll round for every member of a room, then
// merges all members' results in a single transaction.
func (o *Orchestrator) RefreshRoom(ctx context.Context, roomID string) (*domain.Room, PolledFlags, error) {
	doc, err := o.store.Snapshot(ctx)
	if err != nil {
		return nil, PolledFlags{}, err
	}
	r := doc.FindRoom(roomID)
	if r == nil {
		return nil, PolledFlags{}, domain.NotFound("room %s not found", roomID)
	}
	if r.Status != domain.StatusRunning {
		return r, PolledFlags{}, nil
	}

	fetches := make([]*subjectFetch, 0, len(r.Members))
	flags := PolledFlags{}
	for _, m := range r.Members {
		user := doc.FindUser(m.UserID)
		if user == nil {
			o.logger.Warn("room member has no user record", "room_id", roomID, "user", m.UserID)
			continue
		}
		f := o.fetchSubject(ctx, r.Problems, r.StartedAt, r.ProgressByUserID[m.UserID], user)
		fetches = append(fetches, f)
		for platform, pf := range f.byPlatform {
			switch platform {
			case domain.PlatformCodeforces:
				flags.Codeforces = flags.Codeforces || pf.ok
			case domain.PlatformAtCoder:
				flags.AtCoder = flags.AtCoder || pf.ok
			}
		}
	}

	outcome := newMergeOutcome()
	merged, err := store.UpdateResult(o.store, ctx, func(live *domain.Document) (*domain.Room, error) {
		lr := live.FindRoom(roomID)
		if lr == nil {
			return nil, domain.NotFound("room %s not found", roomID)
		}
		if lr.Status != domain.StatusRunning {
			return lr, nil
		}
		for _, f := range fetches {
			if !lr.HasMember(f.userID) {
				continue
			}
			lu := live.FindUser(f.userID)
			if lu == nil {
				continue
			}
			prog, ok := lr.ProgressByUserID[f.userID]
			if !ok {
				prog = domain.NewProgress()
			}
			o.applySubject(live, lr.Problems, lr.StartedAt, &prog, lu, f, "room", roomID, outcome)
			lr.ProgressByUserID[f.userID] = prog
		}
		return lr, nil
	})
	if err != nil {
		return nil, PolledFlags{}, err
	}

	memberIDs := make([]string, 0, len(merged.Members))
	for _, m := range merged.Members {
		memberIDs = append(memberIDs, m.UserID)
	}
	o.publish(memberIDs, "room_update", roomID, outcome)
	return merged, flags, nil
}

// publish fans the round's results out after the transaction committed:
// one session update to every subscriber if anything landed, and one
// achievement event per user per unlock.
func (o *Orchestrator) publish(memberIDs []string, eventName, sessionID string, outcome *mergeOutcome) {
	if o.hub == nil {
		return
	}
	if outcome.anySolves() {
		o.hub.PublishToUsers(memberIDs, eventName, map[string]any{
			"sessionId": sessionID,
			"solved":    outcome.solved,
		})
	}
	for userID, achievements := range outcome.unlocked {
		for _, a := range achievements {
			o.hub.PublishToUser(userID, "achievement", map[string]any{
				"achievementId": a,
			})
		}
	}
}
