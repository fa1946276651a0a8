package liveboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors for the live text page. Downstream consumers depend on the
// resulting snapshot shape, so these change only together with the page.
const (
	rosterSelector    = ".playerName ul li"
	containerSelector = ".broadcast .numCon"
	messageSelector   = "span.normaiflTxt, span.blue, span.red"
	countBoardSel     = ".sbo"
	strikeSelector    = ".sbo .s li.on"
	ballSelector      = ".sbo .b li.on"
	outSelector       = ".sbo .o li.on"
)

// separatorLine is the fixed-width rule the page draws between innings.
var separatorLine = strings.Repeat("-", 39)

// ErrNoCountBoard is returned when the rendered page has no count board,
// which happens once the page stops being a live board (game over, redirect).
var ErrNoCountBoard = errors.New("count board not found")

// Extract parses a rendered live board document and returns its [Snapshot].
//
// Extraction is all or nothing: any error yields no partial data.
func Extract(html string) (Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse document: %w", err)
	}
	return ExtractDocument(doc)
}

// ExtractDocument reads a [Snapshot] from an already parsed document.
//
// Rules:
//   - roster entries are read in document order; role is the entry's class
//     attribute and name its trimmed text
//   - message lines are read in document order across all containers; a line
//     is dropped when its whitespace-collapsed text is empty, "-", or the
//     39-dash separator
//   - each count is the number of lit ("on") indicators in its group
func ExtractDocument(doc *goquery.Document) (Snapshot, error) {
	if doc.Find(countBoardSel).Length() == 0 {
		return Snapshot{}, ErrNoCountBoard
	}

	snap := Snapshot{
		Roster:   []RosterEntry{},
		Messages: []Message{},
	}

	doc.Find(rosterSelector).Each(func(_ int, li *goquery.Selection) {
		snap.Roster = append(snap.Roster, RosterEntry{
			Role: li.AttrOr("class", ""),
			Name: visibleText(li),
		})
	})

	doc.Find(containerSelector).Each(func(_ int, container *goquery.Selection) {
		sourceID := container.AttrOr("id", "")
		container.Find(messageSelector).Each(func(_ int, span *goquery.Selection) {
			text, ok := NormalizeMessage(span.Text())
			if !ok {
				return
			}
			snap.Messages = append(snap.Messages, Message{
				SourceID: sourceID,
				Category: span.AttrOr("class", ""),
				Text:     text,
			})
		})
	})

	snap.Count = CountState{
		Strikes: doc.Find(strikeSelector).Length(),
		Balls:   doc.Find(ballSelector).Length(),
		Outs:    doc.Find(outSelector).Length(),
	}

	return snap, nil
}

// visibleText approximates what the browser renders for sel: hidden and
// script content is dropped, line breaks separate words, and whitespace runs
// collapse to one space.
func visibleText(sel *goquery.Selection) string {
	sel = sel.Clone()
	sel.Find("[hidden], script, style").Remove()
	sel.Find("br").ReplaceWithHtml(" ")
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// NormalizeMessage collapses internal whitespace runs to one space and trims
// the result. It reports false for lines that carry no play-by-play content.
func NormalizeMessage(raw string) (string, bool) {
	text := strings.Join(strings.Fields(raw), " ")
	switch text {
	case "", "-", separatorLine:
		return "", false
	}
	return text, true
}
