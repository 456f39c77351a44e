/*
Package ports defines the boundary interfaces between the flock core and the
outside world.

These interfaces decouple the simulation from the systems around it: where
input events come from and where composed scenes go.

# Key Interfaces

  - InputSource: supplies raw pointer and fire events as streams.
  - SceneSink: receives every composed scene (render, transmit, store).
  - SceneStore: a sink that can also return the latest scene.
*/
package ports
