// Command warden triages Confluence pages: it crawls a page, decides whether
// it calls for a Splunk investigation or a notification, and acts on it.
//
// Usage:
//
//	warden run --input-ref https://wiki.example.com/pages/42
//	warden graph
//	warden validate
//	warden serve --addr :8080
//	warden mcp
package main

func main() {
	Execute()
}
