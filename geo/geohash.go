package geo

import (
	"github.com/mmcloughlin/geohash"
)

// CellPrecision is the geohash precision used for vendor discovery cells.
// Precision 5 cells are ~4.9km x 4.9km, so a cell plus its eight neighbors
// covers any search radius up to roughly 5km in one lookup round.
const CellPrecision = 5

// Cell encodes coordinates into the discovery-cell geohash.
func Cell(lat, lon float64) string {
	return geohash.EncodeWithPrecision(lat, lon, CellPrecision)
}

// CellWithNeighbors returns the cell for the point plus its eight
// neighboring cells.
func CellWithNeighbors(lat, lon float64) []string {
	cell := Cell(lat, lon)
	return append(geohash.Neighbors(cell), cell)
}
