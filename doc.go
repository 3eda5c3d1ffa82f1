// Package starschema turns raw song catalog and listening activity records
// into a star schema of parquet tables: a songplays fact table surrounded by
// songs, artists, users and time dimensions.
//
// A run goes through the stages listed below. Each stage is a plain function
// over in-memory records, so stages can be tested (and reused) without any
// storage behind them; Pipeline wires them to a RawSource per dataset and a
// Store.
//
// 1. Record Reader
//
//    ReadSongs and ReadActivity pull every object out of a RawSource and split
//    it into newline delimited JSON records. Fields are extracted leniently: a
//    null, missing or mistyped field becomes the zero value rather than an
//    error, because the extractors are the ones that decide what a usable row
//    is. A dataset which can't be read, or has nothing parsable in it, is an
//    IngestError. A required field which no record carries at all is a
//    SchemaError, since that means the data isn't the dataset we think it is.
//
// 2. Dimension extractors
//
//    ExtractSongs and ExtractArtists project the catalog, keeping the first
//    record seen for each key. FilterListens keeps the NextSong events of known
//    users at a known time, ExtractUsers keeps each user's most recent state,
//    and BuildTime decomposes each distinct event timestamp. Rows without a key
//    are dropped and counted in TableStats.
//
// 3. Songplay Fact Builder
//
//    BuildSongplays left joins listen events to the catalog on title, artist
//    name and duration. The raw data has no shared key, so this match is a
//    heuristic; MatchStats reports how many events it found a song for.
//
// 4. Writer
//
//    Writer stores each table as parquet below a directory of its own,
//    partitioned by key=value directories, and replaces whatever a previous
//    run left there.
package starschema
