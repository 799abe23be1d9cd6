// Package links builds dashboard deep links for documents.
package links

import (
	"fmt"
	"net/url"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
)

// DashboardBase is the hosted dashboard origin.
const DashboardBase = "https://dashboard.convex.dev"

var (
	deploymentHost = regexp.MustCompile(`^([a-z0-9-]+)\.convex\.cloud$`)
	documentID     = regexp.MustCompile(`^k[a-z0-9]{20,}$`)
)

// DeploymentName extracts <name> from https://<name>.convex.cloud.
func DeploymentName(deploymentURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(deploymentURL))
	if err != nil || u.Scheme != "https" || (u.Path != "" && u.Path != "/") {
		return "", false
	}
	m := deploymentHost.FindStringSubmatch(u.Host)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// LooksLikeDocumentID is a loose shape check for document ids.
func LooksLikeDocumentID(id string) bool {
	return documentID.MatchString(id)
}

// DocumentURL returns the dashboard page for a document, or ok=false when the
// deployment URL is not a hosted deployment or the id does not look like a
// document id.
func DocumentURL(deploymentURL, table, id, componentID string) (string, bool) {
	name, ok := DeploymentName(deploymentURL)
	if !ok || !LooksLikeDocumentID(id) {
		return "", false
	}
	link := fmt.Sprintf("%s/%s/data/%s?id=%s",
		DashboardBase, name, url.PathEscape(table), url.QueryEscape(id))
	if componentID != "" {
		link += "&componentId=" + url.QueryEscape(componentID)
	}
	return link, true
}

// opener launches the platform URL handler; replaced in tests.
var opener = func(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}

// Open launches target in the user's browser without waiting for it.
func Open(target string) error {
	if _, err := url.ParseRequestURI(target); err != nil {
		return fmt.Errorf("invalid url %q: %w", target, err)
	}
	return opener(target)
}
