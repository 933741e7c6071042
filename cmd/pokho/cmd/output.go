package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/MouseMan32/PokHo/pkg/region"
	"github.com/MouseMan32/PokHo/pkg/species"
)

// renderCandidates displays the ranked candidate offsets in table format
func renderCandidates(w io.Writer, list []region.Candidate) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "RANK\tOFFSET\tSCORE\tVALID\tEMPTY\tINVALID\tRARE")
	for i, c := range list {
		fmt.Fprintf(tw, "%d\t0x%X\t%.1f\t%d\t%d\t%d\t%d\n",
			i+1, c.Offset, c.Score, c.ValidCount, c.EmptyCount, c.InvalidCount, c.RareCount)
	}
}

// candidatesJSON displays the ranked candidate offsets in JSON format
func candidatesJSON(w io.Writer, list []region.Candidate) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(list)
}

// renderGrid displays every present slot in the grid as a flat table. names
// may be nil; slots without a resolved name render with a blank NAME column.
func renderGrid(w io.Writer, grid *region.Grid, names map[uint16]string) {
	valid := grid.ValidCount()
	fmt.Fprintf(w, "Region offset: 0x%X\n", grid.Offset)
	if valid == 0 {
		fmt.Fprintln(w, "No creatures decoded")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BOX\tSLOT\tSPECIES\tNAME\tNATURE\tPV\tTID\tSID")
	for _, box := range grid.Boxes {
		for i := range box {
			slot := &box[i]
			if !slot.Present() {
				continue
			}
			rec := slot.Record
			nature, _ := species.NatureName(rec.NatureIndex)
			fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t0x%08X\t%05d\t%05d\n",
				slot.Box, slot.Index, rec.IdentityCode, names[rec.IdentityCode],
				nature, rec.PersonalityValue, rec.TrainerID, rec.SecretID)
		}
	}
	tw.Flush()
	fmt.Fprintf(w, "%d creatures across %d boxes\n", valid, len(grid.Boxes))
}
