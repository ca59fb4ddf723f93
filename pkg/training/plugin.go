// Package training is the core plugin for training administration: the
// trainer, client, exercise, and session tables, and the schedule tab.
package training

import (
	"github.com/mesh-intelligence/coach/pkg/framework"
	"github.com/mesh-intelligence/coach/pkg/tui"
)

// TrainingPlugin sets up the training tables. Row editing rides on the
// generic database commands.
type TrainingPlugin struct{}

func (TrainingPlugin) Build(c *framework.Context) error {
	if err := c.AddTable(framework.NewTableConfig[Trainer]("trainer")); err != nil {
		return err
	}
	if err := c.AddTable(framework.NewTableConfig[Client]("client")); err != nil {
		return err
	}
	if err := c.AddTable(framework.NewTableConfig[Exercise]("exercise")); err != nil {
		return err
	}
	if err := c.AddTable(framework.NewTableConfig[Session]("session")); err != nil {
		return err
	}

	if framework.HasResource[tui.TabKinds](c) {
		if err := tui.RegisterKind[scheduleTabState](c, "Schedule", scheduleTab{}); err != nil {
			return err
		}
	}
	return nil
}

// Trainer stores information about a trainer. Useful for holding company
// details.
type Trainer struct {
	Name        string
	CompanyName string
	Address     string
	Email       string
	Phone       string
}

// Client contains data about a single training client.
type Client struct {
	Name string
}

// Exercise is an entry in the exercise library.
type Exercise struct {
	Name string
}

// Session is one scheduled training session. Charge stays nil until the
// session has been billed.
type Session struct {
	Date    framework.Date
	Trainer framework.RowId
	Client  framework.RowId
	Charge  *framework.RowId
}
