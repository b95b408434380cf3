// Package viz renders heat-diffusion runs in the terminal.
//
//   - [Summary]: a bordered panel of run parameters and metric values
//   - [PlotDiagnostics]: line plot of a sampled diagnostic over a run
//   - [Heatmap]: shaded view of a saved field slice
//   - [Isotherm]: braille view of the region at or above a temperature
//
// Colours come from a [Theme]; heatmaps blend from its Cold to its Hot
// colour.
package viz
