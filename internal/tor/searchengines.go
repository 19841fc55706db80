package tor

import (
	"fmt"
	"sort"
	"strings"
)

// SearchEngine is a known dark-web search engine entry.
type SearchEngine struct {
	Name        string
	URLTemplate string
	Active      bool
	Reliability float64
}

// BuildURL substitutes the {query} placeholder with a percent-encoded query.
func (e SearchEngine) BuildURL(query string) string {
	return strings.ReplaceAll(e.URLTemplate, "{query}", urlencode(query))
}

// urlencode percent-encodes s: alnum/-_.~ pass through unchanged, a space
// becomes '+', and everything else becomes a %HH escape of its byte value.
func urlencode(s string) string {
	var b strings.Builder
	for _, c := range []byte(s) {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~':
			b.WriteByte(c)
		case c == ' ':
			b.WriteByte('+')
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// DefaultSearchEngines is the catalog of known dark-web search engines with
// their per-engine reliability estimate.
var DefaultSearchEngines = []SearchEngine{
	{Name: "Ahmia", URLTemplate: "http://juhanurmihxlp77nkq76byazcldy2hlmovfu2epvl5ankdibsot4csyd.onion/search/?q={query}", Active: true, Reliability: 0.9},
	{Name: "OnionLand", URLTemplate: "http://3bbad7fauom4d6sgppalyqddsqbf5u5p56b5k5uk2zxsy3d6ey2jobad.onion/search?q={query}", Active: true, Reliability: 0.8},
	{Name: "Torgle", URLTemplate: "http://iy3544gmoeclh5de6gez2256v6pjh4omhpqdh2wpeeppjtvqmjhkfwad.onion/torgle/?query={query}", Active: true, Reliability: 0.7},
	{Name: "Amnesia", URLTemplate: "http://amnesia7u5odx5xbwtpnqk3edybgud5bmiagu75bnqx2crntw5kry7ad.onion/search?query={query}", Active: true, Reliability: 0.75},
	{Name: "Kaizer", URLTemplate: "http://kaizerwfvp5gxu6cppibp7jhcqptavq3iqef66wbxenh6a2fklibdvid.onion/search?q={query}", Active: true, Reliability: 0.7},
	{Name: "Anima", URLTemplate: "http://anima4ffe27xmakwnseih3ic2y7y3l6e7fucwk4oerdn4odf7k74tbid.onion/search?q={query}", Active: true, Reliability: 0.65},
	{Name: "Tornado", URLTemplate: "http://tornadoxn3viscgz647shlysdy7ea5zqzwda7hierekeuokh5eh5b3qd.onion/search?q={query}", Active: true, Reliability: 0.7},
	{Name: "TorNet", URLTemplate: "http://tornetupfu7gcgidt33ftnungxzyfq2pygui5qdoyss34xbgx2qruzid.onion/search?q={query}", Active: true, Reliability: 0.65},
	{Name: "Torland", URLTemplate: "http://torlbmqwtudkorme6prgfpmsnile7ug2zm4u3ejpcncxuhpu4k2j4kyd.onion/index.php?a=search&q={query}", Active: true, Reliability: 0.6},
	{Name: "FindTor", URLTemplate: "http://findtorroveq5wdnipkaojfpqulxnkhblymc7aramjzajcvpptd4rjqd.onion/search?q={query}", Active: true, Reliability: 0.7},
	{Name: "Excavator", URLTemplate: "http://2fd6cemt4gmccflhm6imvdfvli3nf7zn6rfrwpsy7uhxrgbypvwf5fad.onion/search?query={query}", Active: true, Reliability: 0.65},
	{Name: "Onionway", URLTemplate: "http://oniwayzz74cv2puhsgx4dpjwieww4wdphsydqvf5q7eyz4myjvyw26ad.onion/search.php?s={query}", Active: true, Reliability: 0.6},
	{Name: "Tor66", URLTemplate: "http://tor66sewebgixwhcqfnp5inzp5x5uohhdy3kvtnyfxc2e5mxiuh34iid.onion/search?q={query}", Active: true, Reliability: 0.75},
	{Name: "OSS", URLTemplate: "http://3fzh7yuupdfyjhwt3ugzqqof6ulbcl27ecev33knxe3u7goi3vfn2qqd.onion/oss/index.php?search={query}", Active: true, Reliability: 0.5},
	{Name: "Torgol", URLTemplate: "http://torgolnpeouim56dykfob6jh5r2ps2j73enc42s2um4ufob3ny4fcdyd.onion/?q={query}", Active: true, Reliability: 0.6},
	{Name: "TheDeepSearches", URLTemplate: "http://searchgf7gdtauh7bhnbyed4ivxqmuoat3nm6zfrg3ymkq6mtnpye3ad.onion/search?q={query}", Active: true, Reliability: 0.7},
}

// ActiveEngines returns every catalog entry currently marked active.
func ActiveEngines() []SearchEngine {
	var out []SearchEngine
	for _, e := range DefaultSearchEngines {
		if e.Active {
			out = append(out, e)
		}
	}
	return out
}

// EnginesByReliability returns the active engines sorted most-reliable first.
func EnginesByReliability() []SearchEngine {
	engines := ActiveEngines()
	sort.Slice(engines, func(i, j int) bool { return engines[i].Reliability > engines[j].Reliability })
	return engines
}
