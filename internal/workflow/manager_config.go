package workflow

import "stockmate/internal/catalog"

// ConfigureStages registers the concrete stage handlers the workflow will run.
func (m *Manager) ConfigureStages(set StageSet) {
	foreground := &laneState{kind: laneForeground, name: "foreground", notificationsEnabled: true}
	background := &laneState{kind: laneBackground, name: "background", notificationsEnabled: false}

	if set.Analyzer != nil {
		foreground.stages = append(foreground.stages, pipelineStage{
			name:             "analyzer",
			handler:          set.Analyzer,
			startStatus:      catalog.StatusPending,
			processingStatus: catalog.StatusAnalyzing,
			doneStatus:       catalog.StatusAnalyzed,
		})
	}
	if set.Generator != nil {
		foreground.stages = append(foreground.stages, pipelineStage{
			name:             "generator",
			handler:          set.Generator,
			startStatus:      catalog.StatusAnalyzed,
			processingStatus: catalog.StatusGenerating,
			doneStatus:       catalog.StatusGenerated,
		})
	}
	if set.Curator != nil {
		foreground.stages = append(foreground.stages, pipelineStage{
			name:             "curator",
			handler:          set.Curator,
			startStatus:      catalog.StatusGenerated,
			processingStatus: catalog.StatusCurating,
			doneStatus:       catalog.StatusCurated,
		})
	}

	// Background stages chain from curated; embedding and uploading drop
	// out of the chain when their handlers are absent.
	exportStart := catalog.StatusCurated
	if set.Embedder != nil {
		background.stages = append(background.stages, pipelineStage{
			name:             "embedder",
			handler:          set.Embedder,
			startStatus:      catalog.StatusCurated,
			processingStatus: catalog.StatusEmbedding,
			doneStatus:       catalog.StatusEmbedded,
		})
		exportStart = catalog.StatusEmbedded
	}
	if set.Exporter != nil {
		exportDone := catalog.StatusExported
		if set.Uploader == nil {
			exportDone = catalog.StatusCompleted
		}
		background.stages = append(background.stages, pipelineStage{
			name:             "exporter",
			handler:          set.Exporter,
			startStatus:      exportStart,
			processingStatus: catalog.StatusExporting,
			doneStatus:       exportDone,
		})
	}
	if set.Uploader != nil {
		background.stages = append(background.stages, pipelineStage{
			name:             "uploader",
			handler:          set.Uploader,
			startStatus:      catalog.StatusExported,
			processingStatus: catalog.StatusUploading,
			doneStatus:       catalog.StatusCompleted,
		})
	}

	lanes := make(map[laneKind]*laneState)
	order := make([]laneKind, 0, 2)

	if len(foreground.stages) > 0 {
		foreground.finalize()
		lanes[foreground.kind] = foreground
		order = append(order, foreground.kind)
	}
	if len(background.stages) > 0 {
		background.finalize()
		lanes[background.kind] = background
		order = append(order, background.kind)
	}

	for _, lane := range lanes {
		if lane == nil {
			continue
		}
		lane.runReclaimer = len(lane.processingStatuses) > 0
	}

	m.mu.Lock()
	m.lanes = lanes
	m.laneOrder = order
	m.mu.Unlock()
}
