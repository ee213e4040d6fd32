// Package cli is the interactive front end of the offline CV client.
//
// The REPL edits CVs in the local store; every save is queued for upload.
// A watcher pings the API and flips the sync manager between online and
// offline, and an observer logs the queue state once per second while
// there is something to upload.
//
// Commands
//
//	new               create a CV (title, then name=value fields)
//	edit <id>         add or change fields of a CV
//	list              all CVs, newest first
//	drafts            CVs flagged as drafts
//	show <id>         print a CV as JSON
//	delete <id>       remove a CV from the local store
//	sync              drain the upload queue now
//	status            connectivity and queue state
//	help | exit
package cli
