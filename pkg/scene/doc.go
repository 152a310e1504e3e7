// Package scene provides the reference authoritative engine for Vitrine.
// The engine owns ground-truth node state (position, size, widget values,
// connections) and a camera, and publishes lifecycle events to subscribers.
// The overlay core mirrors this state; it never owns it.
package scene
