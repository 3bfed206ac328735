package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var serverURL string

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Query server status or a specific job",
	Long: `Queries the server for job status information.
If no job-id is provided, lists all jobs.
If a job-id is provided, shows detailed status for that job.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listJobs(fmt.Sprintf("%s/api/v1/jobs", serverURL))
	}

	jobID := args[0]
	return getJobStatus(fmt.Sprintf("%s/api/v1/jobs/%s/status", serverURL, jobID), jobID)
}

func listJobs(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var jobs []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("Found %d job(s):\n\n", len(jobs))
	for _, job := range jobs {
		fmt.Printf("Job ID: %s\n", job["id"])
		fmt.Printf("  State: %s\n", job["state"])
		if config, ok := job["config"].(map[string]interface{}); ok {
			fmt.Printf("  Algorithm: %v\n", config["algorithm"])
			fmt.Printf("  Target: %v MPa\n", config["minStrength"])
		}
		if fitness, ok := job["bestFitness"].(float64); ok && fitness > 0 {
			fmt.Printf("  Fitness: %.4f (feasible: %v)\n", fitness, job["feasible"])
		}
		fmt.Println()
	}

	return nil
}

func getJobStatus(url, jobID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("job not found: %s", jobID)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Job: %s\n", status["id"])
	fmt.Printf("State: %s\n", status["state"])
	fmt.Println()

	if config, ok := status["config"].(map[string]interface{}); ok {
		fmt.Println("Configuration:")
		fmt.Printf("  Algorithm: %v\n", config["algorithm"])
		fmt.Printf("  Target strength: %v MPa\n", config["minStrength"])
		fmt.Printf("  Cost weight: %v\n", config["costWeight"])
		fmt.Printf("  CO2 weight: %v\n", config["co2Weight"])
		fmt.Printf("  Population: %v\n", config["popSize"])
		fmt.Printf("  Generations: %v\n", config["generations"])
		fmt.Println()
	}

	fmt.Println("Progress:")
	if generation, ok := status["generation"].(float64); ok {
		fmt.Printf("  Generation: %.0f\n", generation)
	}
	if fitness, ok := status["bestFitness"].(float64); ok && fitness > 0 {
		fmt.Printf("  Best fitness: %.4f\n", fitness)
		fmt.Printf("  Feasible: %v\n", status["feasible"])
	}
	if cost, ok := status["cost"].(float64); ok && cost > 0 {
		fmt.Printf("  Cost: %.2f €/m³\n", cost)
	}
	if co2, ok := status["co2"].(float64); ok && co2 > 0 {
		fmt.Printf("  CO2: %.1f kg/m³\n", co2)
	}
	if elapsedSec, ok := status["elapsed"].(float64); ok {
		elapsed := time.Duration(elapsedSec * float64(time.Second))
		fmt.Printf("  Elapsed: %s\n", elapsed.Round(time.Millisecond))
	}
	if errMsg, ok := status["error"].(string); ok && errMsg != "" {
		fmt.Printf("\nError: %s\n", errMsg)
	}

	return nil
}
