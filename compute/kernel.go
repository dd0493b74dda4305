package compute

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kernel is a host implementation of the per-particle integration step.
// Integrate must only read the In buffers and only write particles
// [i0, i1) of the Out buffers, so disjoint ranges may run concurrently.
type Kernel interface {
	Bind(inv Invariants, faces FaceData) error
	Integrate(pair BufferPair, i0, i1 int)
}

var kernels = map[string]func() Kernel{
	"mascon": func() Kernel { return &masconKernel{} },
	"drift":  func() Kernel { return &driftKernel{} },
}

// DefaultKernel is the built-in kernel used when none is configured.
const DefaultKernel = "mascon"

// LookupKernel returns a fresh instance of a built-in kernel.
func LookupKernel(name string) (Kernel, error) {
	if name == "" {
		name = DefaultKernel
	}
	mk, ok := kernels[name]
	if !ok {
		return nil, fmt.Errorf("unknown kernel %q (have %v)", name, KernelNames())
	}
	return mk(), nil
}

// KernelNames lists the built-in kernels.
func KernelNames() []string {
	names := make([]string, 0, len(kernels))
	for n := range kernels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// masconKernel approximates the body by one point mass per face, placed at
// the centroid of the tetrahedron spanned by the origin and the face, with
// mass rho times its signed volume. The body rotates about +z; the step
// adds Coriolis and centrifugal terms and uses semi-implicit Euler.
type masconKernel struct {
	inv     Invariants
	centers []r3.Vec
	gm      []float64 // G * rho * V per face
	omega   r3.Vec
}

func (k *masconKernel) Bind(inv Invariants, faces FaceData) error {
	if err := faces.check(inv); err != nil {
		return err
	}
	k.inv = inv
	k.omega = r3.Vec{Z: inv.AngularFrequency}
	k.centers = make([]r3.Vec, inv.FaceCount)
	k.gm = make([]float64, inv.FaceCount)
	stride := 3 * (inv.VerticesPerFace + 1)
	for f := 0; f < inv.FaceCount; f++ {
		l := faces.Loops[f*stride:]
		a := r3.Vec{X: l[0], Y: l[1], Z: l[2]}
		b := r3.Vec{X: l[3], Y: l[4], Z: l[5]}
		c := r3.Vec{X: l[6], Y: l[7], Z: l[8]}
		vol := r3.Dot(a, r3.Cross(b, c)) / 6
		k.centers[f] = r3.Scale(0.25, r3.Add(r3.Add(a, b), c))
		k.gm[f] = inv.GravityDensity * vol
	}
	return nil
}

func (k *masconKernel) acceleration(r, v r3.Vec) r3.Vec {
	var acc r3.Vec
	for f, c := range k.centers {
		d := r3.Sub(r, c)
		dist := r3.Norm(d)
		if dist == 0 {
			continue
		}
		acc = r3.Add(acc, r3.Scale(-k.gm[f]/(dist*dist*dist), d))
	}
	if k.omega.Z != 0 {
		coriolis := r3.Scale(-2, r3.Cross(k.omega, v))
		centrifugal := r3.Scale(-1, r3.Cross(k.omega, r3.Cross(k.omega, r)))
		acc = r3.Add(acc, r3.Add(coriolis, centrifugal))
	}
	return acc
}

func (k *masconKernel) Integrate(pair BufferPair, i0, i1 int) {
	dt := k.inv.DeltaT
	for i := i0; i < i1; i++ {
		o := Stride * i
		r := r3.Vec{X: pair.PosIn[o], Y: pair.PosIn[o+1], Z: pair.PosIn[o+2]}
		v := r3.Vec{X: pair.VelIn[o], Y: pair.VelIn[o+1], Z: pair.VelIn[o+2]}

		v = r3.Add(v, r3.Scale(dt, k.acceleration(r, v)))
		r = r3.Add(r, r3.Scale(dt, v))

		storeVec(pair.PosOut[o:o+Stride], r, pair.PosIn[o+3])
		storeVec(pair.VelOut[o:o+Stride], v, pair.VelIn[o+3])
	}
}

// driftKernel moves particles in straight lines. It ignores the body and
// is useful for checking transfer and buffer rotation.
type driftKernel struct {
	dt float64
}

func (k *driftKernel) Bind(inv Invariants, faces FaceData) error {
	if err := faces.check(inv); err != nil {
		return err
	}
	k.dt = inv.DeltaT
	return nil
}

func (k *driftKernel) Integrate(pair BufferPair, i0, i1 int) {
	for i := Stride * i0; i < Stride*i1; i++ {
		pair.VelOut[i] = pair.VelIn[i]
		pair.PosOut[i] = pair.PosIn[i]
		if i%Stride != 3 {
			pair.PosOut[i] += k.dt * pair.VelIn[i]
		}
	}
}

func storeVec(dst []float64, v r3.Vec, w float64) {
	dst[0], dst[1], dst[2], dst[3] = v.X, v.Y, v.Z, w
}
