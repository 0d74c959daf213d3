// Package policy filters scheduler queues with a fair-share rule that depends
// on the time of day.
package policy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/squarefactory/cobalt-api/scheduler"
)

var ErrInvalidOccupancy = errors.New("policy nodes occupancy must be in (0, 1]")

type Config struct {
	// OfficeDayStart and OfficeDayStop are offsets from midnight.
	OfficeDayStart     time.Duration `yaml:"office_day_start"`
	OfficeDayStop      time.Duration `yaml:"office_day_stop"`
	OfficeMaxOccupancy float64       `yaml:"office_max_occupancy"`
	MaxOccupancy       float64       `yaml:"max_occupancy"`
	OfficeMaxTime      time.Duration `yaml:"office_max_time"`
	MaxTime            time.Duration `yaml:"max_time"`
}

// DefaultConfig leaves most nodes available to others during office hours
// and uses up to half of them otherwise.
func DefaultConfig() Config {
	return Config{
		OfficeDayStart:     7 * time.Hour,
		OfficeDayStop:      21 * time.Hour,
		OfficeMaxOccupancy: 0.25,
		MaxOccupancy:       0.5,
		OfficeMaxTime:      30 * time.Minute,
		MaxTime:            2 * time.Hour,
	}
}

type UserPolicy struct {
	config Config
	now    func() time.Time
}

type Option func(*UserPolicy)

func WithClock(now func() time.Time) Option {
	return func(p *UserPolicy) { p.now = now }
}

func New(config Config, opts ...Option) (*UserPolicy, error) {
	if config.MaxOccupancy <= 0 || config.MaxOccupancy > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidOccupancy, config.MaxOccupancy)
	}
	p := &UserPolicy{
		config: config,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *UserPolicy) Config() Config {
	return p.config
}

// Now is the policy clock.
func (p *UserPolicy) Now() time.Time {
	return p.now()
}

// regime returns the occupancy fraction and the wall time ceiling in force
// at t.
//
// The office values apply on weekdays, or before the office day starts, or
// after it stops. Only weekend office hours get the other values.
// TODO: confirm with the queue owners whether weekdays and weekends are
// swapped in this rule.
func (p *UserPolicy) regime(t time.Time) (float64, time.Duration) {
	weekday := (int(t.Weekday()) + 6) % 7 // Monday is 0
	tod := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
	if weekday < 5 || tod < p.config.OfficeDayStart || tod > p.config.OfficeDayStop {
		return p.config.OfficeMaxOccupancy, p.config.OfficeMaxTime
	}
	return p.config.MaxOccupancy, p.config.MaxTime
}

// Apply overwrites MaxUserNodes and MaxTime of every queue according to the
// policy at now, and returns the queues user may still submit to, in input
// order. Queues must have been linked to their jobs.
func (p *UserPolicy) Apply(queues []*scheduler.Queue, user string, now time.Time) []*scheduler.Queue {
	occupancy, maxTime := p.regime(now)
	available := []*scheduler.Queue{}
	for _, q := range queues {
		used := q.UsedBy(user)
		allowed := int(math.Ceil(float64(q.TotalNodes) * occupancy))
		if allowed < 1 {
			allowed = 1
		}
		floor := 0
		if used == 0 {
			floor = 1
		}
		q.MaxUserNodes = max(floor, allowed-used)
		q.MaxTime = min(maxTime, q.MaxTime)
		if q.MaxUserNodes > 0 {
			available = append(available, q)
		}
	}
	logrus.WithFields(logrus.Fields{
		"occupancy": occupancy,
		"maxtime":   maxTime,
		"queues":    len(available),
	}).Debug("applied user policy")
	return available
}

type QueueLister interface {
	GetQueuesJobs(ctx context.Context) ([]*scheduler.Queue, []*scheduler.Job, error)
	User() string
}

// Queues fetches the queues from lister and applies the policy at the
// current time.
func (p *UserPolicy) Queues(ctx context.Context, lister QueueLister) ([]*scheduler.Queue, error) {
	queues, _, err := lister.GetQueuesJobs(ctx)
	if err != nil {
		return nil, err
	}
	return p.Apply(queues, lister.User(), p.now()), nil
}
