package dashboard

import (
	"time"

	"github.com/emperorhan/base-score/internal/domain/model"
)

const (
	HistogramPoints = 24
	histogramScale  = 100
)

type ActivityPoint struct {
	Time  time.Time `json:"time"`
	Value int       `json:"value"`
}

// HourlyActivity returns HistogramPoints hourly points ending at now, oldest
// first. Each point's value is the number of recent transactions that fall
// on the same UTC calendar day as the point, scaled by 100.
func HourlyActivity(recent []model.ClassifiedTransaction, now time.Time) []ActivityPoint {
	now = now.UTC()
	perDay := make(map[civilDay]int, 2)
	for _, tx := range recent {
		if tx.Timestamp.IsZero() {
			continue
		}
		perDay[dayOf(tx.Timestamp)]++
	}

	points := make([]ActivityPoint, 0, HistogramPoints)
	for i := HistogramPoints - 1; i >= 0; i-- {
		at := now.Add(-time.Duration(i) * time.Hour)
		points = append(points, ActivityPoint{
			Time:  at,
			Value: perDay[dayOf(at)] * histogramScale,
		})
	}
	return points
}

type civilDay struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time) civilDay {
	y, m, d := t.UTC().Date()
	return civilDay{year: y, month: m, day: d}
}
