package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/heatlab/internal/diffusion"
)

type ExportData struct {
	Run         RunMetadata      `json:"run"`
	Diagnostics []ExportedSample `json:"diagnostics"`
}

type ExportedSample struct {
	Iteration int     `json:"iteration"`
	Heat      float64 `json:"heat"`
	Max       float64 `json:"max"`
	Min       float64 `json:"min"`
	Elapsed   float64 `json:"elapsed_seconds"`
}

func newExportData(meta RunMetadata, samples []diffusion.Sample) ExportData {
	data := ExportData{
		Run:         meta,
		Diagnostics: make([]ExportedSample, len(samples)),
	}
	for i, s := range samples {
		data.Diagnostics[i] = ExportedSample{
			Iteration: s.Iteration,
			Heat:      s.Heat,
			Max:       s.Max,
			Min:       s.Min,
			Elapsed:   s.Elapsed.Seconds(),
		}
	}
	return data
}

func ExportJSON(path string, meta RunMetadata, samples []diffusion.Sample) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, samples)
}

func WriteJSON(w io.Writer, meta RunMetadata, samples []diffusion.Sample) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, samples))
}
