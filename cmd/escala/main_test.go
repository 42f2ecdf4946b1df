package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/escala/internal/adapters/feed"
	"github.com/okian/escala/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func writeMarket(t *testing.T) string {
	t.Helper()
	var players []model.Player
	id := 1
	for _, pos := range model.Positions() {
		for i := 0; i < 4; i++ {
			players = append(players, model.Player{
				ID: id, Nickname: "n", Position: pos, Price: float64(2 + i),
				AverageScore: float64(1 + id%5), GamesPlayed: 6,
				Status: model.Probable, Venue: model.Away,
			})
			id++
		}
	}
	body, err := json.Marshal(feed.Snapshot{Players: players})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "market.json")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	convey.Convey("Given the escala command", t, func() {
		var stdout, stderr bytes.Buffer

		convey.Convey("When help is requested", func() {
			code := run([]string{"-help"}, &stdout, &stderr)
			convey.So(code, convey.ShouldEqual, 0)
			convey.So(stdout.String(), convey.ShouldContainSubstring, "-budget")
		})

		convey.Convey("When a flag is unknown", func() {
			convey.So(run([]string{"-captain", "3"}, &stdout, &stderr), convey.ShouldEqual, 2)
		})

		convey.Convey("When the log level is unknown", func() {
			convey.So(run([]string{"-log-level", "loud"}, &stdout, &stderr), convey.ShouldEqual, 2)
		})

		convey.Convey("When the snapshot file is missing", func() {
			code := run([]string{"-snapshot", "/nonexistent/market.json"}, &stdout, &stderr)
			convey.So(code, convey.ShouldEqual, 1)
			convey.So(stderr.String(), convey.ShouldContainSubstring, "escala: ")
		})

		convey.Convey("When a snapshot file is given", func() {
			code := run([]string{"-snapshot", writeMarket(t), "-formation", "4-4-2"}, &stdout, &stderr)

			convey.Convey("Then the roster is printed and the exit code is zero", func() {
				convey.So(code, convey.ShouldEqual, 0)
				convey.So(stdout.String(), convey.ShouldContainSubstring, "4-4-2  pieces 12/12")
			})
		})
	})
}
