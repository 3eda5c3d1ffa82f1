package starschema

// SongRecord is one raw record of the song catalog. Empty strings stand for
// fields which were null or missing in the source.
type SongRecord struct {
	SongID          string
	Title           string
	ArtistID        string
	ArtistName      string
	ArtistLocation  string
	ArtistLatitude  *float64
	ArtistLongitude *float64
	Year            int
	Duration        float64

	// DurationExact is duration as written in the source, reduced to its
	// shortest exact decimal form. Empty when duration is null.
	DurationExact string
}

// ActivityRecord is one raw event of the activity log. An event is
// identified by (UserID, SessionID, TS).
type ActivityRecord struct {
	UserID    string
	FirstName string
	LastName  string
	Gender    string
	Level     string
	Page      string
	Song      string
	Artist    string
	Length    *float64
	// LengthExact is length in the same form as SongRecord.DurationExact.
	LengthExact string
	SessionID   int64
	Location    string
	UserAgent   string

	// TS is the event time in milliseconds since the Unix epoch. It is only
	// meaningful when HasTS is set; a null or missing ts leaves HasTS false.
	TS    int64
	HasTS bool
}

// ListenPage is the page value of the events which record a song being played.
const ListenPage = "NextSong"
