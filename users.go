package starschema

// FilterStats breaks down the events FilterListens dropped.
type FilterStats struct {
	Events int
	// NonListens are events of pages other than NextSong: logins, home page
	// visits and the like.
	NonListens int
	// NullUser and NullTS are NextSong events without a userId or ts. They
	// are excluded from the users, time and songplays tables.
	NullUser int
	NullTS   int
}

// Listens is the number of events kept.
func (s FilterStats) Listens() int { return s.Events - s.NonListens - s.NullUser - s.NullTS }

// FilterListens keeps the events which record a song being played by a known
// user at a known time: page is "NextSong" and both userId and ts are set.
func FilterListens(recs []ActivityRecord) ([]ActivityRecord, FilterStats) {
	stats := FilterStats{Events: len(recs)}
	listens := make([]ActivityRecord, 0, len(recs))
	for _, rec := range recs {
		switch {
		case rec.Page != ListenPage:
			stats.NonListens++
		case rec.UserID == "":
			stats.NullUser++
		case !rec.HasTS:
			stats.NullTS++
		default:
			listens = append(listens, rec)
		}
	}
	return listens, stats
}

// ExtractUsers reduces listen events to one row per user. A user's level
// changes over time (free -> paid and back), so the row of the user's most
// recent event wins. Events with equal timestamps are resolved in favor of
// the one later in the input. An event without a timestamp only stands in
// for a user until one with a timestamp turns up.
//
// Rows are ordered by each user's first appearance in the input.
func ExtractUsers(listens []ActivityRecord) ([]User, TableStats) {
	stats := TableStats{Table: TableUsers, Input: len(listens)}
	idx := make(map[string]int)
	latest := make([]int64, 0)
	timed := make([]bool, 0)
	users := make([]User, 0)
	for _, rec := range listens {
		if rec.UserID == "" {
			stats.NullKey++
			continue
		}
		u := User{
			UserID:    rec.UserID,
			FirstName: rec.FirstName,
			LastName:  rec.LastName,
			Gender:    rec.Gender,
			Level:     rec.Level,
		}
		i, ok := idx[rec.UserID]
		if !ok {
			idx[rec.UserID] = len(users)
			users = append(users, u)
			latest = append(latest, rec.TS)
			timed = append(timed, rec.HasTS)
			continue
		}
		stats.Duplicates++
		if !timed[i] || (rec.HasTS && rec.TS >= latest[i]) {
			users[i] = u
			latest[i] = rec.TS
			timed[i] = rec.HasTS
		}
	}
	stats.Output = len(users)
	return users, stats
}
