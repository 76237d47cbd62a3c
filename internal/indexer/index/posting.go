package index

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Posting records that a document contains a term Frequency times.
type Posting struct {
	DocID     int
	Frequency int
}

// MarshalJSON encodes p as the two-element array [docID, frequency].
func (p Posting) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.DocID, p.Frequency})
}

func (p *Posting) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("posting must be [docID, frequency], got %d values", len(pair))
	}
	p.DocID, p.Frequency = pair[0], pair[1]
	return nil
}

// PostingList is ordered by ascending DocID with one entry per document.
type PostingList []Posting

// DocIDs strips the frequencies.
func (pl PostingList) DocIDs() []int {
	ids := make([]int, len(pl))
	for i, p := range pl {
		ids[i] = p.DocID
	}
	return ids
}

// Find reports the frequency of docID. A missing document yields
// (0, false). The list must be sorted by DocID.
func (pl PostingList) Find(docID int) (int, bool) {
	i := sort.Search(len(pl), func(i int) bool { return pl[i].DocID >= docID })
	if i < len(pl) && pl[i].DocID == docID {
		return pl[i].Frequency, true
	}
	return 0, false
}
