package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"media-job-service/internal/entity"
	"media-job-service/internal/service"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, rep service.BatchReport) {
	if rep.NothingToDo {
		fmt.Fprintln(w, "Nothing to do.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.Header("Asset", "Result", "Stage", "Detail")
	for _, r := range rep.Results {
		result, detail := "ok", r.URL
		if !r.Succeeded {
			result, detail = "failed", r.Error
		}
		table.Append(r.ID.String(), result, r.Stage, detail)
	}
	table.Render()

	fmt.Fprintf(w, "processed=%d succeeded=%d failed=%d\n", rep.Processed, rep.Succeeded, rep.Failed)
}

func printAck(w io.Writer, ack service.DispatchAck) {
	if ack.NothingToDo {
		fmt.Fprintf(w, "Asset %s: renditions up to date, nothing dispatched.\n", ack.AssetID)
		return
	}

	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")
	table.Append("Asset", ack.AssetID.String())
	table.Append("Worker Job", ack.JobID)
	table.Append("Request ID", ack.RequestID)
	table.Append("Targets", fmt.Sprint(ack.Targets))
	table.Render()
}

func printAgentJob(w io.Writer, j *entity.AgentJob) {
	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")
	table.Append("ID", j.ID.String())
	table.Append("Owner", j.UserID)
	table.Append("Status", string(j.Status))
	table.Append("Created At", j.CreatedAt.Format(time.RFC3339))
	table.Append("Updated At", j.UpdatedAt.Format(time.RFC3339))
	if len(j.Result) > 0 {
		table.Append("Result", string(j.Result))
	}
	table.Render()
}

func printAgentJobs(w io.Writer, jobs []entity.AgentJob) {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Status", "Created")
	for _, j := range jobs {
		table.Append(j.ID.String(), string(j.Status), j.CreatedAt.Format(time.RFC3339))
	}
	table.Render()
	fmt.Fprintln(w, "total: "+strconv.Itoa(len(jobs)))
}
