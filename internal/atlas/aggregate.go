package atlas

import (
	"sort"

	"github.com/boreal-gis/site-atlas/internal/geo"
)

// Weight returns the heat weight for a category: full intensity when the
// category is exactly 1, faint for everything else. The value is compared
// un-truncated, so 1.5 weighs the same as 2 or 0.
func Weight(category float64) float64 {
	if category == 1 {
		return 1.0
	}
	return 0.2
}

// CountSites tallies accepted sites per province and per region. Every
// province and region in the scheme appears in the result, zero included, so
// a region total always equals the sum of its member provinces.
func CountSites(records []SiteRecord, scheme *geo.RegionScheme, excluded int) Counts {
	counts := Counts{
		ByProvince: make(map[string]int),
		ByRegion:   make(map[string]int),
		Accepted:   len(records),
		Excluded:   excluded,
	}
	for _, region := range scheme.RegionNames() {
		counts.ByRegion[region] = 0
		for _, province := range scheme.Regions[region] {
			counts.ByProvince[province] = 0
		}
	}
	for _, rec := range records {
		counts.ByProvince[rec.Province]++
		counts.ByRegion[rec.Region]++
	}
	return counts
}

// BundleSites groups records into one bundle per province, each carrying the
// province's markers and heat samples. Bundles and their sites come out
// sorted so rendering is deterministic regardless of source order.
func BundleSites(records []SiteRecord) []SiteBundle {
	byProvince := make(map[string]*SiteBundle)
	for _, rec := range records {
		b, ok := byProvince[rec.Province]
		if !ok {
			b = &SiteBundle{Province: rec.Province, Region: rec.Region}
			byProvince[rec.Province] = b
		}
		b.Sites = append(b.Sites, rec)
	}

	bundles := make([]SiteBundle, 0, len(byProvince))
	for _, b := range byProvince {
		sort.Slice(b.Sites, func(i, j int) bool {
			if b.Sites[i].Site != b.Sites[j].Site {
				return b.Sites[i].Site < b.Sites[j].Site
			}
			if b.Sites[i].Lat != b.Sites[j].Lat {
				return b.Sites[i].Lat < b.Sites[j].Lat
			}
			return b.Sites[i].Lon < b.Sites[j].Lon
		})
		b.Heat = make([]HeatPoint, 0, len(b.Sites))
		for _, s := range b.Sites {
			b.Heat = append(b.Heat, HeatPoint{Lat: s.Lat, Lon: s.Lon, Weight: Weight(s.Category)})
		}
		bundles = append(bundles, *b)
	}
	sort.Slice(bundles, func(i, j int) bool { return bundles[i].Province < bundles[j].Province })
	return bundles
}

// MeanCenter returns the average site position, or fallback when there are
// no sites to average.
func MeanCenter(records []SiteRecord, fallback geo.Coordinate) geo.Coordinate {
	if len(records) == 0 {
		return fallback
	}
	var sumLat, sumLon float64
	for _, rec := range records {
		sumLat += rec.Lat
		sumLon += rec.Lon
	}
	n := float64(len(records))
	return geo.Coordinate{Lat: sumLat / n, Lon: sumLon / n}
}
