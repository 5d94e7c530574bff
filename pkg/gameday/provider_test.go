package gameday_test

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"github.com/fortuna/gameday/pkg/fetch"
	"github.com/fortuna/gameday/pkg/gameday"
)

// provider is a fake Gameday host serving the files under testdata.
type provider struct {
	srv  *httptest.Server
	hits map[string]int
}

func newProvider(t *testing.T) *provider {
	t.Helper()
	p := &provider{hits: map[string]int{}}

	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			p.hits[req.URL.Path]++
			next.ServeHTTP(w, req)
		})
	})

	gd2 := r.PathPrefix("/components/game/mlb").Subrouter()
	gd2.HandleFunc("/year_{year}/month_{month}/day_{day}/", func(w http.ResponseWriter, req *http.Request) {
		v := mux.Vars(req)
		switch v["year"] + v["month"] + v["day"] {
		case "20150405":
			serveFile(t, w, "day_listing.html")
		case "20150406":
			serveFile(t, w, "empty_listing.html")
		default:
			http.NotFound(w, req)
		}
	})
	gd2.HandleFunc("/year_2015/month_04/day_05/{gid}/players.xml", func(w http.ResponseWriter, req *http.Request) {
		switch mux.Vars(req)["gid"] {
		case "gid_2015_04_05_lanmlb_sdnmlb_1":
			serveFile(t, w, "players.xml")
		case "gid_2015_04_05_nyamlb_bosmlb_1":
			serveFile(t, w, "players_nyy.xml")
		case "gid_2015_04_05_nyamlb_bosmlb_2":
			w.Write([]byte("<game><team>"))
		default:
			http.NotFound(w, req)
		}
	})
	gd2.HandleFunc("/year_2015/month_04/day_05/{gid}/game.xml", func(w http.ResponseWriter, req *http.Request) {
		if mux.Vars(req)["gid"] != "gid_2015_04_05_lanmlb_sdnmlb_1" {
			http.NotFound(w, req)
			return
		}
		serveFile(t, w, "game.xml")
	})
	gd2.HandleFunc("/year_2015/month_04/day_05/gid_2015_04_05_lanmlb_sdnmlb_1/inning/inning_all.xml", func(w http.ResponseWriter, req *http.Request) {
		serveFile(t, w, "inning_all.xml")
	})

	r.HandleFunc("/gdx/year_2015/month_04/day_05/gid_2015_04_05_lanmlb_sdnmlb_1/linescore.json", func(w http.ResponseWriter, req *http.Request) {
		serveFile(t, w, "linescore.json")
	})
	r.HandleFunc("/statsapi/game/{pk}/feed/color.json", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"game_id":"` + mux.Vars(req)["pk"] + `","items":[]}`))
	})
	r.HandleFunc("/savant/gf", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("game_pk") != "414036" {
			w.Write(nil)
			return
		}
		serveFile(t, w, "exit_velocity.json")
	})

	p.srv = httptest.NewServer(r)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *provider) endpoints() gameday.Endpoints {
	return gameday.Endpoints{
		GD2:      p.srv.URL + "/components/game/mlb/",
		GDX:      p.srv.URL + "/gdx/",
		StatsAPI: p.srv.URL + "/statsapi/",
		Savant:   p.srv.URL + "/savant/",
	}
}

func (p *provider) discoverer(opts ...gameday.Option) *gameday.Discoverer {
	client := fetch.NewClient(
		fetch.WithDelay(fetch.Delay{}),
		fetch.WithLogger(quietLogger()),
	)
	opts = append([]gameday.Option{
		gameday.WithEndpoints(p.endpoints()),
		gameday.WithLogger(quietLogger()),
	}, opts...)
	return gameday.NewDiscoverer(client, opts...)
}

func serveFile(t *testing.T, w http.ResponseWriter, name string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Errorf("reading fixture %s: %v", name, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Write(data)
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("reading fixture %s: %v", name, err)
	}
	return data
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
