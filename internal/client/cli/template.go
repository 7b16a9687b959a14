package cli

const usageText = `DraftKeeper Client

Usage:
  draftkeeper [OPTIONS] COMMAND

Options:
  --version      Show version information
  --server URL   Server URL (default: http://localhost:8080)
  --db PATH      Path to local database (default: draftkeeper-client.db)

Commands:
  register              Register new user
  login                 Login to server
  logout                Logout from server
  status                Show session status
  docs                  List your documents
  new [title]           Create a new document
  edit <id>             Open a document in the editing session
  delete <id>           Delete a document and its checkpoints
  checkpoint <id> [name]  Snapshot the current draft under a name
  checkpoints <id>      List snapshots of a document

Examples:
  draftkeeper register
  draftkeeper login
  draftkeeper new "History essay"
  draftkeeper edit b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5
  draftkeeper checkpoint b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5 draft-1
  draftkeeper --server https://example.com login
`

const documentListTemplate = `
=== Your Documents ===

{{- if eq (len .) 0 }}
No documents found.

Use 'draftkeeper new <title>' to create your first document.
{{- else }}
Found {{len .}} document(s):

{{- range . }}
- {{ .Title }}
   ID:      {{ .ID }}
   Updated: {{ .UpdatedAt.Format "2006-01-02 15:04:05" }}
   Preview: {{ preview .Content }}

{{- end }}
Use 'draftkeeper edit <id>' to continue writing.
{{- end }}
`

const checkpointListTemplate = `
=== Checkpoints ===

{{- if eq (len .) 0 }}
No checkpoints found.

Use 'draftkeeper checkpoint <id> <name>' to snapshot the current draft.
{{- else }}
Found {{len .}} checkpoint(s):

{{- range . }}
- {{ .Name }}
   ID:      {{ .ID }}
   Created: {{ .CreatedAt.Format "2006-01-02 15:04:05" }}
   Preview: {{ preview .Content }}

{{- end }}
{{- end }}
`
