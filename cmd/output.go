package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Dosada05/swiss-tournament/models"
)

// output prints command results as aligned text or indented JSON.
type output struct {
	w      io.Writer
	format string
}

func newOutput(w io.Writer, format string) *output {
	return &output{w: w, format: format}
}

func (o *output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *output) message(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
		return
	}
	fmt.Fprintln(o.w, msg)
}

func (o *output) round(r *models.Round) {
	if o.format == "json" {
		o.printJSON(r)
		return
	}
	fmt.Fprintf(o.w, "Round %d\n", r.Number)
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BOARD\tPLAYER 1\tPLAYER 2\tMATCH")
	for i, p := range r.Pairings {
		opponent, match := "BYE", "-"
		if !p.Bye {
			opponent = fmt.Sprintf("%s (%d)", *p.Player2Name, *p.Player2ID)
		}
		if p.MatchID != nil {
			match = fmt.Sprint(*p.MatchID)
		}
		fmt.Fprintf(tw, "%d\t%s (%d)\t%s\t%s\n", i+1, p.Player1Name, p.Player1ID, opponent, match)
	}
	_ = tw.Flush()
}

func (o *output) standings(rows []models.StandingsRow) {
	if o.format == "json" {
		o.printJSON(rows)
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tNAME\tW\tD\tL\tBYES\tPLAYED")
	for i, r := range rows {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%d\t%d\t%d\t%d\n",
			i+1, r.PlayerID, r.Name, r.Wins, r.Draws, r.Losses, r.Byes, r.MatchesPlayed)
	}
	_ = tw.Flush()
}
