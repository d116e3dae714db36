package arch_test

import (
	"path/filepath"
	"testing"
)

// layers assigns each internal package to a numeric layer. A package at
// layer N may only import packages at layer N or below.
var layers = map[string]int{
	"config":    0,
	"lexicon":   0,
	"telemetry": 0,

	"api":      1,
	"category": 1,
	"view":     1,

	"normalize": 2,
	"stats":     2,

	"catalog": 3,

	"mutation": 4,

	"journal": 5,

	"ui": 6,
}

// TestDependencyLayering verifies that no internal package imports a package
// from a higher layer.
func TestDependencyLayering(t *testing.T) {
	t.Parallel()

	dir := internalDirPath(t)
	for _, pkg := range internalPackages(t) {
		importerLayer, ok := layers[pkg]
		if !ok {
			continue
		}
		for _, imp := range importsOf(t, filepath.Join(dir, pkg)) {
			importedLayer, ok := layers[imp]
			if !ok || importerLayer >= importedLayer {
				continue
			}
			t.Errorf("layer violation: %s (layer %d) imports %s (layer %d)",
				pkg, importerLayer, imp, importedLayer)
		}
	}
}

// TestNoUnknownPackages forces new packages to be placed in the layer map.
func TestNoUnknownPackages(t *testing.T) {
	t.Parallel()

	for _, pkg := range internalPackages(t) {
		if _, ok := layers[pkg]; !ok {
			t.Errorf("package %s has no layer assignment; add it to the layers map", pkg)
		}
	}
}

// TestSameLayerImportsAreAcyclic guards against two packages on one layer
// importing each other, which the layer check alone allows.
func TestSameLayerImportsAreAcyclic(t *testing.T) {
	t.Parallel()

	dir := internalDirPath(t)
	imports := make(map[string]map[string]bool)
	for _, pkg := range internalPackages(t) {
		imports[pkg] = make(map[string]bool)
		for _, imp := range importsOf(t, filepath.Join(dir, pkg)) {
			imports[pkg][imp] = true
		}
	}
	for a, deps := range imports {
		for b := range deps {
			if a < b && imports[b][a] {
				t.Errorf("import cycle between %s and %s", a, b)
			}
		}
	}
}
