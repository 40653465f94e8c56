package httputil_test

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/kgview/pkg/httputil"
)

func ExampleResponseCache() {
	dir := filepath.Join(os.TempDir(), "kgview-example")
	defer os.RemoveAll(dir)

	cache, err := httputil.NewResponseCache(dir, 10*time.Minute)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	graphs := cache.Namespace("graph:")
	_ = graphs.Set("kb-1", map[string]int{"total": 42})

	var result map[string]int
	if ok, err := graphs.Get("kb-1", &result); ok && err == nil {
		fmt.Println("Total:", result["total"])
	}
	// Output:
	// Total: 42
}

func ExampleResponseCache_miss() {
	dir := filepath.Join(os.TempDir(), "kgview-example-miss")
	cache, _ := httputil.NewResponseCache(dir, time.Hour)
	defer os.RemoveAll(dir)

	var result string
	ok, err := cache.Get("nonexistent", &result)
	fmt.Println("Found:", ok)
	fmt.Println("Error:", err)
	// Output:
	// Found: false
	// Error: <nil>
}
