// Package connectors provides the provider adapters for the workplace
// sources (Google Drive, Notion, Slack, Confluence), plus the retry and
// rate-limiting helpers they share. Each adapter lives in its own
// subpackage and implements the driven.Provider port.
package connectors
