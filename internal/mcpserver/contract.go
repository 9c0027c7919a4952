package mcpserver

// CatalogFormatURI is the resource URI of CatalogFormatContract.
const CatalogFormatURI = "bandhub://catalog-format"

// CatalogFormatContract describes the song list and setlist file formats
// that LLM consumers should follow when reading or proposing edits.
const CatalogFormatContract = `# Bandhub Catalog Format Contract

The band's data lives in plain Markdown files. Every line ends with two
spaces (a Markdown hard break).

## Song list

One file holds the whole catalog:

` + "```" + `markdown
# ****Buckingham Conspiracy 3.0 : SONG LIST ****
 
#
Cocaine - JJ Cale (100)
Superstition - Stevie Wonder^🎺 ^ (100)
Time - Pink Floyd^🥁^ (60)
` + "```" + `

- A song line is ` + "`" + `Name - Artist<markers> (BPM)` + "`" + `. The artist is optional.
- BPM is an integer between 60 and 200.
- ` + "`" + `^🎺 ^` + "`" + ` marks a horn song, ` + "`" + `^🥁^` + "`" + ` marks a lead-vocals song. Both may appear.
- Song names are unique. They must not contain " - ", ` + "`" + `^` + "`" + `, a parenthesized
  number, or start with ` + "`" + `#` + "`" + `.
- Lines are kept sorted by name.

## Setlists

Each show is stored as ` + "`" + `setlists/<Venue> Setlist (MMDDYY)/<Venue> Setlist (MMDDYY).md` + "`" + `:

` + "```" + `markdown
# ****The Cat's Cradle Setlist (03/07/25)****

# - Travis sit-in
🎺 - Horn

# ****—SET 1****
Cocaine (100)
Deal
#
# ****—-SET 2****
Superstition (100)
#
# ****—-SET 3****
Cocaine (100)
` + "```" + `

- Venue and date come from the directory name, not the heading.
- There are always three sets. A set may be empty.
- A song line is the catalog name, optionally followed by ` + "`" + `(BPM)` + "`" + `.
- A song appears at most once per set but may repeat across sets.

## Timing

A song lasts ` + "`" + `210 * 120 / BPM` + "`" + ` seconds (BPM below 60 counts as 60; no BPM counts as
210 seconds). Sets 1 and 2 are followed by a break, 15 minutes unless stated otherwise.

## Song data

- Tabs: ` + "`" + `song_data/tabs/<Name>.json` + "`" + `
- Lyrics: ` + "`" + `song_data/lyrics/<Name>.txt` + "`" + ` (use the ` + "`" + `save_lyrics` + "`" + ` tool)

A "/" in a song name becomes "-" in these file names.
`
