package session

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/gauntlet/internal/domain"
	"github.com/roach88/gauntlet/internal/store"
)

// CreateRoom selects problems for a new multi-user room and persists it
// with the creator as host. Rooms start in the lobby; the host starts
// the clock once everybody has joined.
func (s *Service) CreateRoom(ctx context.Context, in CreateInput) (*domain.Room, error) {
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
	room := domain.Room{
		ID:              s.newID(),
		Name:            in.Name,
		OwnerUserID:     in.OwnerUserID,
		InviteCode:      newInviteCode(),
		Status:          domain.StatusLobby,
		CreatedAt:       now,
		DurationSeconds: int64(in.DurationMinutes) * 60,
		Seed:            seed,
		Problems:        problems,
		ProgressByUserID: map[string]domain.Progress{
			in.OwnerUserID: domain.NewProgress(),
		},
	}

	err = s.store.Update(ctx, func(doc *domain.Document) error {
		user := doc.FindUser(in.OwnerUserID)
		if user == nil {
			return domain.NotFound("user %s not found", in.OwnerUserID)
		}
		room.Members = []domain.RoomMember{{
			UserID:   in.OwnerUserID,
			Username: user.Username,
			Role:     domain.RoleHost,
			JoinedAt: now,
		}}
		doc.Rooms = append(doc.Rooms, room)
		doc.AppendActivity(domain.ActivityEvent{
			ID:          s.newID(),
			At:          now,
			Kind:        domain.ActivityRoom,
			ActorUserID: in.OwnerUserID,
			Target:      domain.ActivityTarget{Type: "room", ID: room.ID},
			Message:     fmt.Sprintf("%s opened room %q", user.Username, room.Name),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("room created",
		"room_id", room.ID,
		"owner", in.OwnerUserID,
		"problems", len(problems),
		"invite_code", room.InviteCode)
	return &room, nil
}

// GetRoom returns one room. Only members may see it.
func (s *Service) GetRoom(ctx context.Context, userID, roomID string) (*domain.Room, error) {
	doc, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	r := doc.FindRoom(roomID)
	if r == nil {
		return nil, domain.NotFound("room %s not found", roomID)
	}
	if !r.HasMember(userID) {
		return nil, domain.Forbidden("user %s is not a member of room %s", userID, roomID)
	}
	return r, nil
}

// ListRooms returns the rooms the user is a member of, newest first.
func (s *Service) ListRooms(ctx context.Context, userID string) ([]domain.Room, error) {
	doc, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Room
	for i := len(doc.Rooms) - 1; i >= 0; i-- {
		if doc.Rooms[i].HasMember(userID) {
			out = append(out, doc.Rooms[i])
		}
	}
	return out, nil
}

// JoinRoom adds the user to the room matching the invite code. Joining
// is only possible while the room is still in the lobby; joining a room
// twice is a no-op.
func (s *Service) JoinRoom(ctx context.Context, userID, inviteCode string) (*domain.Room, error) {
	code := strings.ToUpper(strings.TrimSpace(inviteCode))
	room, err := store.UpdateResult(s.store, ctx, func(doc *domain.Document) (*domain.Room, error) {
		user := doc.FindUser(userID)
		if user == nil {
			return nil, domain.NotFound("user %s not found", userID)
		}
		var r *domain.Room
		for i := range doc.Rooms {
			if doc.Rooms[i].InviteCode == code {
				r = &doc.Rooms[i]
				break
			}
		}
		if r == nil {
			return nil, domain.Forbidden("invalid invite code")
		}
		if r.HasMember(userID) {
			return r, nil
		}
		if r.Status != domain.StatusLobby {
			return nil, domain.InvalidState("room %s already started", r.ID)
		}
		r.Members = append(r.Members, domain.RoomMember{
			UserID:   userID,
			Username: user.Username,
			Role:     domain.RoleMember,
			JoinedAt: s.now(),
		})
		r.ProgressByUserID[userID] = domain.NewProgress()
		doc.AppendActivity(domain.ActivityEvent{
			ID:          s.newID(),
			At:          s.now(),
			Kind:        domain.ActivityRoom,
			ActorUserID: userID,
			Target:      domain.ActivityTarget{Type: "room", ID: r.ID},
			Message:     fmt.Sprintf("%s joined room %q", user.Username, r.Name),
		})
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("room joined", "room_id", room.ID, "user", userID)
	return room, nil
}

// LeaveRoom removes the user from a lobby room. The host cannot leave;
// hosts delete the room instead.
func (s *Service) LeaveRoom(ctx context.Context, userID, roomID string) error {
	return s.store.Update(ctx, func(doc *domain.Document) error {
		r := doc.FindRoom(roomID)
		if r == nil {
			return domain.NotFound("room %s not found", roomID)
		}
		if r.OwnerUserID == userID {
			return domain.InvalidState("the host cannot leave room %s", roomID)
		}
		if r.Status != domain.StatusLobby {
			return domain.InvalidState("room %s already started", roomID)
		}
		for i, m := range r.Members {
			if m.UserID == userID {
				r.Members = append(r.Members[:i], r.Members[i+1:]...)
				delete(r.ProgressByUserID, userID)
				return nil
			}
		}
		return domain.Forbidden("user %s is not a member of room %s", userID, roomID)
	})
}

// DeleteRoom removes a room. Host only; running rooms must be finished
// first.
func (s *Service) DeleteRoom(ctx context.Context, userID, roomID string) error {
	return s.store.Update(ctx, func(doc *domain.Document) error {
		for i := range doc.Rooms {
			r := &doc.Rooms[i]
			if r.ID != roomID {
				continue
			}
			if r.OwnerUserID != userID {
				return domain.Forbidden("only the host can delete room %s", roomID)
			}
			if r.Status == domain.StatusRunning {
				return domain.InvalidState("room %s is running; finish it before deleting", roomID)
			}
			doc.Rooms = append(doc.Rooms[:i], doc.Rooms[i+1:]...)
			return nil
		}
		return domain.NotFound("room %s not found", roomID)
	})
}

// StartRoom moves a lobby room to running. Host only. Every member's
// progress is reset so the poll cursors start from the room clock.
func (s *Service) StartRoom(ctx context.Context, userID, roomID string) (*domain.Room, error) {
	return store.UpdateResult(s.store, ctx, func(doc *domain.Document) (*domain.Room, error) {
		r := doc.FindRoom(roomID)
		if r == nil {
			return nil, domain.NotFound("room %s not found", roomID)
		}
		if r.OwnerUserID != userID {
			return nil, domain.Forbidden("only the host can start room %s", roomID)
		}
		if r.Status != domain.StatusLobby {
			return nil, domain.InvalidState("room %s is %s, expected %s", roomID, r.Status, domain.StatusLobby)
		}
		r.Status = domain.StatusRunning
		r.StartedAt = s.now()
		for _, m := range r.Members {
			r.ProgressByUserID[m.UserID] = domain.NewProgress()
		}
		doc.AppendActivity(domain.ActivityEvent{
			ID:          s.newID(),
			At:          r.StartedAt,
			Kind:        domain.ActivityRoom,
			ActorUserID: userID,
			Target:      domain.ActivityTarget{Type: "room", ID: r.ID},
			Message:     fmt.Sprintf("room %q started", r.Name),
		})
		return r, nil
	})
}

// FinishRoom moves a running room to finished. Host only.
func (s *Service) FinishRoom(ctx context.Context, userID, roomID string) (*domain.Room, error) {
	return store.UpdateResult(s.store, ctx, func(doc *domain.Document) (*domain.Room, error) {
		r := doc.FindRoom(roomID)
		if r == nil {
			return nil, domain.NotFound("room %s not found", roomID)
		}
		if r.OwnerUserID != userID {
			return nil, domain.Forbidden("only the host can finish room %s", roomID)
		}
		if r.Status != domain.StatusRunning {
			return nil, domain.InvalidState("room %s is %s, expected %s", roomID, r.Status, domain.StatusRunning)
		}
		r.Status = domain.StatusFinished
		r.FinishedAt = s.now()
		doc.AppendActivity(domain.ActivityEvent{
			ID:          s.newID(),
			At:          r.FinishedAt,
			Kind:        domain.ActivityRoom,
			ActorUserID: userID,
			Target:      domain.ActivityTarget{Type: "room", ID: r.ID},
			Message:     fmt.Sprintf("room %q finished", r.Name),
		})
		return r, nil
	})
}

// PostMessage appends a chat message to a room the user is a member of.
func (s *Service) PostMessage(ctx context.Context, userID, roomID, text string) (*domain.RoomMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.InvalidInput("message text must not be empty")
	}
	return store.UpdateResult(s.store, ctx, func(doc *domain.Document) (*domain.RoomMessage, error) {
		r := doc.FindRoom(roomID)
		if r == nil {
			return nil, domain.NotFound("room %s not found", roomID)
		}
		if !r.HasMember(userID) {
			return nil, domain.Forbidden("user %s is not a member of room %s", userID, roomID)
		}
		user := doc.FindUser(userID)
		if user == nil {
			return nil, domain.NotFound("user %s not found", userID)
		}
		msg := domain.RoomMessage{
			ID:       s.newID(),
			RoomID:   roomID,
			UserID:   userID,
			Username: user.Username,
			At:       s.now(),
			Text:     text,
		}
		doc.RoomMessages = append(doc.RoomMessages, msg)
		return &msg, nil
	})
}

// Messages returns the room's chat history in insertion order.
func (s *Service) Messages(ctx context.Context, userID, roomID string) ([]domain.RoomMessage, error) {
	doc, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	r := doc.FindRoom(roomID)
	if r == nil {
		return nil, domain.NotFound("room %s not found", roomID)
	}
	if !r.HasMember(userID) {
		return nil, domain.Forbidden("user %s is not a member of room %s", userID, roomID)
	}
	var out []domain.RoomMessage
	for _, m := range doc.RoomMessages {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ScoreboardRow is one member's standing in a room.
type ScoreboardRow struct {
	UserID         string `json:"userId"`
	Username       string `json:"username"`
	Solved         int    `json:"solved"`
	PenaltySeconds int64  `json:"penaltySeconds"`
	LastSolveAt    int64  `json:"lastSolveAt,omitempty"`
}

// Scoreboard ranks the room's members: most solved first, then lowest
// penalty (sum of solve times), then earliest last solve, then username.
func Scoreboard(r *domain.Room) []ScoreboardRow {
	rows := make([]ScoreboardRow, 0, len(r.Members))
	for _, m := range r.Members {
		row := ScoreboardRow{UserID: m.UserID, Username: m.Username}
		for _, info := range r.ProgressByUserID[m.UserID].Solved {
			row.Solved++
			row.PenaltySeconds += info.SolveTimeSeconds
			if info.SolvedAt > row.LastSolveAt {
				row.LastSolveAt = info.SolvedAt
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Solved != b.Solved {
			return a.Solved > b.Solved
		}
		if a.PenaltySeconds != b.PenaltySeconds {
			return a.PenaltySeconds < b.PenaltySeconds
		}
		if a.LastSolveAt != b.LastSolveAt {
			return a.LastSolveAt < b.LastSolveAt
		}
		if a.Username != b.Username {
			return a.Username < b.Username
		}
		return a.UserID < b.UserID
	})
	return rows
}
