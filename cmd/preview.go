package cmd

import (
	"fmt"
	"image/png"
	"net/http"

	"github.com/achilleasa/lumen/film"
	"github.com/urfave/cli"
)

// The served page reloads the frame on a timer; the %d verb receives the
// refresh interval in ms.
const previewPage = `<!DOCTYPE html>
<html>
<head><title>lumen preview</title></head>
<body style="margin:0;background:#151515;text-align:center">
<img id="frame" src="/frame.png" style="margin-top:2em;max-width:90vw;image-rendering:pixelated"/>
<script>
setInterval(function() {
	document.getElementById("frame").src = "/frame.png?t=" + Date.now();
}, %d);
</script>
</body>
</html>
`

// Serve a live view of a film over http. The film may be written to by a
// concurrent render; every snapshot observes consistent pixel values.
func PreviewFilm(ctx *cli.Context) error {
	setupLogging(ctx)

	target, err := film.Open(ctx.String("film"))
	if err != nil {
		return err
	}
	defer target.Close()

	refreshMs := ctx.Int("refresh")
	if refreshMs <= 0 {
		refreshMs = 1000
	}
	page := fmt.Sprintf(previewPage, refreshMs)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})
	mux.HandleFunc("/frame.png", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		if err := png.Encode(w, target.Snapshot()); err != nil {
			logger.Warningf("could not encode preview frame: %v", err)
		}
	})

	listenAddr := ctx.String("listen")
	logger.Noticef("serving preview of film %q at http://%s (refresh every %d ms)", target.Path(), listenAddr, refreshMs)
	return http.ListenAndServe(listenAddr, mux)
}
