/*
Package dictionary holds the merged word set used by every spell-checking operation.

A Store is built once from an ordered list of line-based sources (the embedded baseline
first, user dictionaries after it) and is read-only from then on, so any number of
goroutines may query it without locking.

# Format

Each source is UTF-8 text with one word per line:

	# comment lines start with a hash
	*dzień
	dziecko

A leading '*' marks a common word, which ranks higher in suggestions and completions.
Blank lines and lines that are empty after stripping the marker are skipped.

# Canonical form

Words are stored in canonical form: NFC-normalized and lowercased with Polish casing
rules, so "DZIEŃ", "Dzień" and a decomposed "dzień" all resolve to the same entry.
The first occurrence of a canonical form wins; later duplicates are ignored.
*/
package dictionary
