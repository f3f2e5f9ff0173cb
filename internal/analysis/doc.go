// Package analysis provides Fourier diagnostics of sampled velocity fields.
//
//   - [EnergySpectrum]: shell-averaged kinetic energy per wavenumber
//   - [SpectralSlope]: least-squares log-log slope of a spectrum
//
// The spectrum satisfies Parseval's relation: its sum is half the mean of
// |u|^2 over the grid.
package analysis
