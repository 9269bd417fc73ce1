package platform_test

import (
	"context"
	"fmt"
	"log"

	"github.com/ZebulonRouseFrantzich/hcdl/internal/platform"
)

func ExampleDetector_Detect() {
	detector := platform.NewDetector()
	info, err := detector.Detect(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	if info.Arch == "" {
		fmt.Printf("no default architecture for %s\n", info.ArchRaw)
	}
}

func ExampleIsValidArch() {
	fmt.Println(platform.IsValidArch("amd64"))
	fmt.Println(platform.IsValidArch("arm64"))
	// Output:
	// true
	// false
}
