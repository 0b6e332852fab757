package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quarry",
		Name:      "events_processed_total",
		Help:      "Events read from input files",
	}, []string{"file"})

	objectsSelected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quarry",
		Name:      "objects_selected_total",
		Help:      "Physics objects passing the selection",
	}, []string{"kind"})

	filesDone = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quarry",
		Name:      "files_total",
		Help:      "Input files processed, by outcome",
	}, []string{"outcome"})
)

func observe(file string, res EventResult) {
	eventsProcessed.WithLabelValues(file).Inc()
	objectsSelected.WithLabelValues("electron").Add(float64(res.Electrons))
	objectsSelected.WithLabelValues("muon").Add(float64(res.Muons))
	objectsSelected.WithLabelValues("jet").Add(float64(res.Jets))
}
