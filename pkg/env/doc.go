// pkg/env/doc.go

/*
Package env locates a native runtime installation on the host.

Two strategies are tried, in order:

  - Environment: when the runtime's home variable (R_HOME for R) is set, the
    include and library directories are derived from it by a plain path join.
    This is the supported way of configuring a build and never spawns a process.
  - Probe: otherwise the runtime's own executable is asked to print its home,
    include and library directories, one per line. Shelling out to the runtime
    is discouraged (see "Writing R Extensions", section 1.6) and only kept as
    a fallback.

Basic Usage:

	desc, _ := registry.New("").Load("r")
	paths, err := env.NewLocator(desc).Locate(ctx)
	if err != nil {
		var derr *env.DiscoveryError
		if errors.As(err, &derr) {
			// controlled early exit
		}
	}

	flags := paths.Flags(desc.LinkLib)
	for _, flag := range flags.IncludeFlags {
		fmt.Println(flag) // -I/usr/share/R/include
	}
*/
package env
