package utils

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// SplitURL holds the five components of a split URL reference.
//
// Splitting is deliberately lenient, urllib-style: net/url.Parse rejects
// references such as "ssh://git@host:owner/repo.git" (non-numeric port) or
// "github:owner/repo", both of which workflow references use. Split never
// fails; unrecognizable input simply ends up in Path.
type SplitURL struct {
	Scheme   string
	Netloc   string
	Path     string
	Query    string
	Fragment string
}

const schemeChars = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"+-."

// Schemes whose canonical form carries a "//" authority even when empty,
// so "file" + "/x" renders as "file:///x". Mirrors urllib's uses_netloc.
var usesNetloc = map[string]bool{
	"ftp": true, "http": true, "https": true, "file": true,
	"git": true, "git+ssh": true, "ssh": true, "rsync": true,
	"svn": true, "svn+ssh": true, "sftp": true, "nfs": true,
	"ws": true, "wss": true,
}

// Split splits a URL reference into scheme, netloc, path, query and fragment.
func Split(rawURL string) *SplitURL {
	// Control characters confuse the delimiter scan; strip them the way
	// WHATWG-style parsers do.
	rawURL = strings.TrimLeft(rawURL, "\x00\x01\x02\x03\x04\x05\x06\x07\x08\t\n\v\f\r\x0e\x0f\x10\x11\x12\x13\x14\x15\x16\x17\x18\x19\x1a\x1b\x1c\x1d\x1e\x1f ")
	rawURL = strings.NewReplacer("\t", "", "\r", "", "\n", "").Replace(rawURL)

	out := &SplitURL{}
	rest := rawURL

	if i := strings.Index(rest, ":"); i > 0 && isScheme(rest[:i]) {
		out.Scheme = strings.ToLower(rest[:i])
		rest = rest[i+1:]
	}

	if strings.HasPrefix(rest, "//") {
		end := len(rest)
		if i := strings.IndexAny(rest[2:], "/?#"); i >= 0 {
			end = 2 + i
		}
		out.Netloc = rest[2:end]
		rest = rest[end:]
	}

	if i := strings.Index(rest, "#"); i >= 0 {
		rest, out.Fragment = rest[:i], rest[i+1:]
	}
	if i := strings.Index(rest, "?"); i >= 0 {
		rest, out.Query = rest[:i], rest[i+1:]
	}
	out.Path = rest

	return out
}

// isScheme reports whether s is a valid scheme: a letter followed by
// letters, digits, "+", "-" or ".".
func isScheme(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(schemeChars, rune(s[i])) {
			return false
		}
	}
	return true
}

// String reassembles the components into a URL, urlunsplit-style.
func (u *SplitURL) String() string {
	out := u.Path
	if u.Netloc != "" || (u.Scheme != "" && usesNetloc[u.Scheme] && !strings.HasPrefix(out, "//")) {
		if out != "" && !strings.HasPrefix(out, "/") {
			out = "/" + out
		}
		out = "//" + u.Netloc + out
	}
	if u.Scheme != "" {
		out = u.Scheme + ":" + out
	}
	if u.Query != "" {
		out += "?" + u.Query
	}
	if u.Fragment != "" {
		out += "#" + u.Fragment
	}
	return out
}

// WithPath returns a copy of the components with a different path.
func (u *SplitURL) WithPath(path string) *SplitURL {
	out := *u
	out.Path = path
	return &out
}

// Hostname returns the lowercased host part of the netloc, without
// userinfo or port.
func (u *SplitURL) Hostname() string {
	host := u.Netloc
	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	if strings.HasPrefix(host, "[") {
		// Bracketed IPv6 literal
		if i := strings.Index(host, "]"); i >= 0 {
			host = host[1:i]
		}
	} else if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}
	return strings.ToLower(host)
}

// ASCIIHost returns the netloc with a non-ASCII host converted to its IDNA
// (punycode) form, keeping userinfo and port. Hosts that fail conversion are
// returned unchanged.
func ASCIIHost(netloc string) string {
	prefix := ""
	host := netloc
	if i := strings.LastIndex(host, "@"); i >= 0 {
		prefix, host = host[:i+1], host[i+1:]
	}
	port := ""
	if !strings.HasPrefix(host, "[") {
		if i := strings.Index(host, ":"); i >= 0 {
			host, port = host[:i], host[i:]
		}
	}
	if isASCII(host) {
		return netloc
	}
	converted, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return netloc
	}
	return prefix + converted + port
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// ASCIIHostURL returns rawURL with its host converted to the IDNA ASCII form,
// leaving everything else untouched. URLs without an authority, and hosts that
// are already ASCII, come back unchanged. Use it when dialing: reported URLs
// keep the user's spelling, only the wire sees punycode.
func ASCIIHostURL(rawURL string) string {
	u := Split(rawURL)
	if u.Netloc == "" {
		return rawURL
	}
	converted := ASCIIHost(u.Netloc)
	if converted == u.Netloc {
		return rawURL
	}
	u.Netloc = converted
	return u.String()
}

// UnquotePlus percent-decodes a string, treating "+" as space. Strings that
// fail to decode are returned unchanged, so malformed escapes survive intact
// instead of aborting classification.
func UnquotePlus(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// FirstFragmentValue parses a URL fragment as a query string and returns the
// first value of the given key, or "" when absent.
func FirstFragmentValue(fragment, key string) string {
	if fragment == "" {
		return ""
	}
	values, err := url.ParseQuery(fragment)
	if err != nil && len(values) == 0 {
		return ""
	}
	if vs, ok := values[key]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}
