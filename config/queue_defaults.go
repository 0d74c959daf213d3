package config

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/squarefactory/cobalt-api/scheduler"
)

// LoadQueueDefaultsHTML imports the capacity of each queue from the tables of
// an HTML page. Rows whose first cell is a queue name and whose second cell
// is a node count are kept; the count is used for both MaxUserNodes and
// TotalNodes. Other rows, such as headers, are skipped.
func LoadQueueDefaultsHTML(r io.Reader) (scheduler.QueueDefaults, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse queue defaults page: %w", err)
	}

	defaults := scheduler.QueueDefaults{}
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		name := strings.TrimSpace(cells.Eq(0).Text())
		nodes, err := strconv.Atoi(strings.TrimSpace(cells.Eq(1).Text()))
		if name == "" || err != nil || nodes < 0 {
			logrus.WithField("row", strings.Join(strings.Fields(row.Text()), " ")).
				Debug("skipping queue defaults row")
			return
		}
		defaults[name] = scheduler.QueueDefault{MaxUserNodes: nodes, TotalNodes: nodes}
	})
	if len(defaults) == 0 {
		return nil, fmt.Errorf("no queue found in queue defaults page")
	}
	return defaults, nil
}
