package omdb

import "testing"

func FuzzConvertSearch(f *testing.F) {
	f.Add("tt1375666", "Inception", "2010", "p.jpg")
	f.Add("", "", "", "")

	f.Fuzz(func(t *testing.T, id, title, year, poster string) {
		payload := searchResponse{
			Search:   []searchItem{{ImdbID: id, Title: title, Year: year, Poster: poster}},
			Response: "True",
		}
		results, err := convertSearch(payload)
		if err != nil {
			if id != "" && title != "" {
				t.Fatalf("convertSearch rejected a complete item: %v", err)
			}
			return
		}
		if len(results) != 1 || results[0].ImdbID == "" || results[0].Title == "" {
			t.Fatalf("convertSearch returned incomplete result: %+v", results)
		}
	})
}
