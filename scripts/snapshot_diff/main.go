package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"reflect"
	"sort"
	"time"

	"github.com/noah-isme/foia-desk-api/internal/models"
	"github.com/noah-isme/foia-desk-api/internal/repository"
)

// snapshot_diff compares two registry snapshot files and reports per-request
// drift. Meant for verifying a desk migration (CLI file -> hosted API) or a
// restored backup before it goes live. Exit 1 when the registers disagree.

type comparison struct {
	TrackingNumber string
	InLeft         bool
	InRight        bool
	Match          bool
}

func main() {
	var (
		leftPath  string
		rightPath string
	)

	flag.StringVar(&leftPath, "left", "foia_requests.json", "first snapshot file")
	flag.StringVar(&rightPath, "right", "", "second snapshot file")
	flag.Parse()

	if rightPath == "" {
		log.Fatal("missing -right snapshot file")
	}

	left, err := loadSnapshot(leftPath)
	if err != nil {
		log.Fatalf("failed to load %s: %v", leftPath, err)
	}
	right, err := loadSnapshot(rightPath)
	if err != nil {
		log.Fatalf("failed to load %s: %v", rightPath, err)
	}

	comparisons := compareSnapshots(left, right)
	drift := printReport(comparisons, left.SavedAt, right.SavedAt)

	fmt.Printf("Requests compared: %d, drifted: %d\n", len(comparisons), drift)
	if drift > 0 {
		os.Exit(1)
	}
}

func loadSnapshot(path string) (*models.RegistrySnapshot, error) {
	return repository.NewFileSnapshotStore(path).Load(context.Background())
}

func compareSnapshots(left, right *models.RegistrySnapshot) []comparison {
	leftByTN := indexByTracking(left.Requests)
	rightByTN := indexByTracking(right.Requests)

	trackingNumbers := make([]string, 0, len(leftByTN))
	for tn := range leftByTN {
		trackingNumbers = append(trackingNumbers, tn)
	}
	for tn := range rightByTN {
		if _, seen := leftByTN[tn]; !seen {
			trackingNumbers = append(trackingNumbers, tn)
		}
	}
	sort.Strings(trackingNumbers)

	comparisons := make([]comparison, 0, len(trackingNumbers))
	for _, tn := range trackingNumbers {
		l, inLeft := leftByTN[tn]
		r, inRight := rightByTN[tn]
		comp := comparison{TrackingNumber: tn, InLeft: inLeft, InRight: inRight}
		if inLeft && inRight {
			comp.Match = requestsEqual(l, r)
		}
		comparisons = append(comparisons, comp)
	}
	return comparisons
}

func indexByTracking(requests []models.Request) map[string]*models.Request {
	index := make(map[string]*models.Request, len(requests))
	for i := range requests {
		index[requests[i].TrackingNumber] = &requests[i]
	}
	return index
}

// requestsEqual compares through a JSON round trip so the check sees exactly
// the fields the stores persist, with numbers normalized across encoders.
func requestsEqual(a, b *models.Request) bool {
	aj, err := toJSONValue(a)
	if err != nil {
		return false
	}
	bj, err := toJSONValue(b)
	if err != nil {
		return false
	}
	normalize(&aj)
	normalize(&bj)
	return reflect.DeepEqual(aj, bj)
}

func toJSONValue(req *models.Request) (interface{}, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, err
	}
	return value, nil
}

func normalize(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k, v2 := range val {
			normalize(&v2)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			normalize(&v2)
			val[i] = v2
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func printReport(results []comparison, leftSaved, rightSaved time.Time) int {
	fmt.Println("Snapshot Drift Report")
	fmt.Println("======================")
	fmt.Printf("Left saved at : %s\n", leftSaved.Format(time.RFC3339))
	fmt.Printf("Right saved at: %s\n", rightSaved.Format(time.RFC3339))

	drift := 0
	for _, res := range results {
		switch {
		case !res.InRight:
			drift++
			fmt.Printf("[MISSING] %s only in left snapshot\n", res.TrackingNumber)
		case !res.InLeft:
			drift++
			fmt.Printf("[MISSING] %s only in right snapshot\n", res.TrackingNumber)
		case !res.Match:
			drift++
			fmt.Printf("[DIFF] %s fields disagree\n", res.TrackingNumber)
		default:
			fmt.Printf("[OK] %s\n", res.TrackingNumber)
		}
	}
	return drift
}
