// Package overlay is the synchronization core of Vitrine. It keeps a
// reactive rendering surface pixel-locked to an authoritative scene engine:
// the transform mirror republishes the camera as one composed transform,
// the lifecycle bridge turns engine events into immutable snapshots, a
// quad-tree culls off-screen nodes and assigns level-of-detail, the value
// sync protocol routes UI edits back to the engine exactly once, and the
// frame scheduler runs the whole pipeline in a fixed per-frame order.
//
// Ownership is strict: the engine owns node truth; this package owns
// snapshots, the spatial index, visibility state, and the transform; the
// rendering layer owns nothing and only renders what it is handed.
package overlay
