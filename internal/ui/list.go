package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/raccclo/internal/models"
)

var (
	_ list.Item = subredditItem{}
	_ list.Item = multiredditItem{}
)

// subredditItem wraps [models.Subreddit] to implement [list.Item].
type subredditItem struct {
	subreddit models.Subreddit
}

func (i subredditItem) FilterValue() string { return i.subreddit.Name }

func (i subredditItem) Title() string { return "r/" + i.subreddit.Name }

func (i subredditItem) Description() string { return "" }

// multiredditItem wraps [models.Multireddit] to implement [list.Item].
type multiredditItem struct {
	multi models.Multireddit
}

func (i multiredditItem) FilterValue() string { return i.multi.Name }

func (i multiredditItem) Title() string { return i.multi.Name }

func (i multiredditItem) Description() string {
	desc := fmt.Sprintf("%d subreddits", len(i.multi.Subreddits))
	if i.multi.Visibility != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.multi.Visibility)
	}
	return desc
}
