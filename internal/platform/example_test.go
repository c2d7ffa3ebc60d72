package platform_test

import (
	"context"
	"fmt"
	"log"

	"github.com/dockstrap/dockstrap/internal/platform"
)

func ExampleDetector_Detect() {
	detector := platform.NewDetector()
	info, err := detector.Detect(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("OS: %s\n", info.OS)
	fmt.Printf("Architecture: %s\n", info.Arch)

	if distro := info.GetDistro(); distro != nil {
		fmt.Printf("Distribution: %s %s (%s family)\n", distro.ID, distro.Codename, distro.Family)
	}
}

func ExampleInfo_IsDebianFamily() {
	info := &platform.Info{
		OS:     "linux",
		Family: platform.FamilyDebian,
	}

	if info.IsDebianFamily() {
		fmt.Println("This host installs packages with apt")
	}
	// Output: This host installs packages with apt
}

func ExampleInfo_GetDistro() {
	info := &platform.Info{
		OS:       "linux",
		DistroID: "ubuntu",
		Family:   platform.FamilyDebian,
		Version:  "22.04",
		Codename: "jammy",
	}

	if distro := info.GetDistro(); distro != nil {
		fmt.Printf("Distribution: %s %s (%s family)\n",
			distro.ID, distro.Version, distro.Family)
	}
	// Output: Distribution: ubuntu 22.04 (debian family)
}

func ExampleInfo_GetDistro_nil() {
	info := &platform.Info{
		OS:   "darwin",
		Arch: "arm64",
	}

	if distro := info.GetDistro(); distro == nil {
		fmt.Println("No distribution information available (not Linux)")
	}
	// Output: No distribution information available (not Linux)
}
