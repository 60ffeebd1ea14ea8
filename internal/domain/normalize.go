package domain

// maxActivities caps the activity feed; older entries are dropped first.
const maxActivities = 5000

// Normalize backfills every missing collection and nested field with its
// default value. It runs on every store load, before a transaction body
// sees the document and before the document is persisted, so legacy files
// written by older versions are transparently upgraded in place.
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Contests == nil {
		d.Contests = []Contest{}
	}
	if d.Rooms == nil {
		d.Rooms = []Room{}
	}
	if d.RoomMessages == nil {
		d.RoomMessages = []RoomMessage{}
	}
	if d.Activities == nil {
		d.Activities = []ActivityEvent{}
	}

	for i := range d.Users {
		normalizeUser(&d.Users[i])
	}
	for i := range d.Contests {
		c := &d.Contests[i]
		if c.Problems == nil {
			c.Problems = []NormalizedProblem{}
		}
		normalizeProgress(&c.Progress)
	}
	for i := range d.Rooms {
		r := &d.Rooms[i]
		if r.Problems == nil {
			r.Problems = []NormalizedProblem{}
		}
		if r.Members == nil {
			r.Members = []RoomMember{}
		}
		if r.ProgressByUserID == nil {
			r.ProgressByUserID = map[string]Progress{}
		}
		for id, p := range r.ProgressByUserID {
			normalizeProgress(&p)
			r.ProgressByUserID[id] = p
		}
	}
}

func normalizeUser(u *User) {
	if u.Stats.Achievements == nil {
		u.Stats.Achievements = map[AchievementID]Unlock{}
	}
}

func normalizeProgress(p *Progress) {
	if p.Solved == nil {
		p.Solved = map[string]SolvedInfo{}
	}
}

// FindUser returns the user with the given id, or nil.
func (d *Document) FindUser(id string) *User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	return nil
}

// FindContest returns the contest with the given id owned by ownerUserID,
// or nil.
func (d *Document) FindContest(ownerUserID, id string) *Contest {
	for i := range d.Contests {
		c := &d.Contests[i]
		if c.ID == id && c.OwnerUserID == ownerUserID {
			return c
		}
	}
	return nil
}

// FindContestByID returns the contest with the given id, or nil.
func (d *Document) FindContestByID(id string) *Contest {
	for i := range d.Contests {
		if d.Contests[i].ID == id {
			return &d.Contests[i]
		}
	}
	return nil
}

// FindRoom returns the room with the given id, or nil.
func (d *Document) FindRoom(id string) *Room {
	for i := range d.Rooms {
		if d.Rooms[i].ID == id {
			return &d.Rooms[i]
		}
	}
	return nil
}

// AppendActivity appends an event to the activity feed, trimming the
// oldest entries beyond the feed cap.
func (d *Document) AppendActivity(ev ActivityEvent) {
	d.Activities = append(d.Activities, ev)
	if n := len(d.Activities); n > maxActivities {
		d.Activities = append([]ActivityEvent(nil), d.Activities[n-maxActivities:]...)
	}
}
