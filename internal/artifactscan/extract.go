// Package artifactscan extracts indicators of compromise and other
// intelligence artifacts from scraped text: onion addresses, URLs,
// cryptocurrency addresses, hashes, CVEs, MITRE ATT&CK TTPs, emails, IPv4
// addresses, and domains.
package artifactscan

import (
	"regexp"
	"strings"

	"github.com/duskline/robin-smesh/pkg/models"
)

var (
	onionRe   = regexp.MustCompile(`\b[a-z2-7]{16,56}\.onion\b`)
	urlRe     = regexp.MustCompile(`https?://[^\s<>"']+`)
	bitcoinRe = regexp.MustCompile(`\b(?:bc1|[13])[a-zA-HJ-NP-Z0-9]{25,39}\b`)
	ethereumRe = regexp.MustCompile(`\b0x[a-fA-F0-9]{40}\b`)
	moneroRe  = regexp.MustCompile(`\b4[0-9AB][1-9A-HJ-NP-Za-km-z]{93}\b`)
	sha256Re  = regexp.MustCompile(`\b[a-fA-F0-9]{64}\b`)
	sha1Re    = regexp.MustCompile(`\b[a-fA-F0-9]{40}\b`)
	md5Re     = regexp.MustCompile(`\b[a-fA-F0-9]{32}\b`)
	cveRe     = regexp.MustCompile(`\bCVE-\d{4}-\d{4,}\b`)
	mitreRe   = regexp.MustCompile(`\b[TS]\d{4}(?:\.\d{3})?\b`)
	emailRe   = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	ipv4Re    = regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`)
	domainRe  = regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}\b`)
)

var commonDomains = []string{
	"google.com", "facebook.com", "twitter.com", "github.com",
	"microsoft.com", "apple.com", "amazon.com", "youtube.com",
	"linkedin.com", "instagram.com", "wikipedia.org", "reddit.com",
}

func isCommonDomain(domain string) bool {
	for _, c := range commonDomains {
		if strings.HasSuffix(domain, c) {
			return true
		}
	}
	return false
}

// Extract scans text for every recognized artifact type, in the priority
// order onion > url > bitcoin > ethereum > monero > sha256 > sha1 > md5 >
// cve > mitre > email > ipv4 > domain, deduplicating by type+lowercased
// value within this single pass.
func Extract(text string, source string) []models.Artifact {
	var artifacts []models.Artifact
	seen := make(map[string]struct{})

	add := func(t models.ArtifactType, value string, confidence float64) {
		key := string(t) + ":" + strings.ToLower(value)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		a := models.NewArtifact(t, value).WithConfidence(confidence)
		if source != "" {
			a = a.WithSource(source)
		}
		artifacts = append(artifacts, a)
	}
	seenKey := func(t models.ArtifactType, value string) bool {
		_, ok := seen[string(t)+":"+strings.ToLower(value)]
		return ok
	}

	for _, m := range onionRe.FindAllString(text, -1) {
		add(models.ArtifactOnion, m, 1.0)
	}
	for _, m := range urlRe.FindAllString(text, -1) {
		add(models.ArtifactURL, m, 0.9)
	}
	for _, m := range bitcoinRe.FindAllString(text, -1) {
		add(models.ArtifactBitcoin, m, 0.95)
	}
	for _, m := range ethereumRe.FindAllString(text, -1) {
		add(models.ArtifactEthereum, m, 0.95)
	}
	for _, m := range moneroRe.FindAllString(text, -1) {
		add(models.ArtifactMonero, m, 0.95)
	}
	for _, m := range sha256Re.FindAllString(text, -1) {
		add(models.ArtifactSHA256, m, 0.9)
	}
	for _, m := range sha1Re.FindAllString(text, -1) {
		if !seenKey(models.ArtifactSHA256, m) {
			add(models.ArtifactSHA1, m, 0.85)
		}
	}
	for _, m := range md5Re.FindAllString(text, -1) {
		if !seenKey(models.ArtifactSHA256, m) && !seenKey(models.ArtifactSHA1, m) {
			add(models.ArtifactMD5, m, 0.8)
		}
	}
	for _, m := range cveRe.FindAllString(text, -1) {
		add(models.ArtifactCVE, m, 1.0)
	}
	for _, m := range mitreRe.FindAllString(text, -1) {
		add(models.ArtifactMitreAttack, m, 0.9)
	}
	for _, m := range emailRe.FindAllString(text, -1) {
		add(models.ArtifactEmail, m, 0.95)
	}
	for _, m := range ipv4Re.FindAllString(text, -1) {
		if !strings.HasPrefix(m, "0.") && !strings.HasPrefix(m, "127.0.0.1") {
			add(models.ArtifactIPv4, m, 0.85)
		}
	}
	for _, m := range domainRe.FindAllString(text, -1) {
		lower := strings.ToLower(m)
		if !isCommonDomain(lower) && !strings.HasSuffix(lower, ".onion") {
			add(models.ArtifactDomain, m, 0.7)
		}
	}

	return artifacts
}
