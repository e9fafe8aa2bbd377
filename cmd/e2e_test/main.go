package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const baseURL = "http://localhost:8080"
const userID = "e2e-user"

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	// 1. Health Check
	checkEndpoint("GET", "/health", nil, 200)

	// 2. Create Assets
	assetID := createAsset(map[string]interface{}{
		"name": "Bitcoin", "type": "crypto", "symbol": "bitcoin", "quantity": "0.5",
	})
	fmt.Printf("Created Asset ID: %s\n", assetID)
	createAsset(map[string]interface{}{
		"name": "Vintage watch", "type": "other", "manual_value": "2400",
	})

	// 3. List Assets
	checkEndpoint("GET", "/assets", nil, 200)

	// 4. Batch Refresh
	checkEndpoint("POST", "/assets/refresh", nil, 200)

	// 5. Portfolio totals
	checkEndpoint("GET", "/portfolio", nil, 200)

	// 6. Update Asset
	checkEndpoint("PUT", "/assets/"+assetID, map[string]interface{}{"quantity": "0.75"}, 200)

	// 7. Delete Asset
	checkEndpoint("DELETE", "/assets/"+assetID, nil, 200)

	// 8. Verify it is gone
	checkEndpoint("PUT", "/assets/"+assetID, map[string]interface{}{"quantity": "1"}, 404)

	fmt.Println("ALL TESTS PASSED")
}

func checkEndpoint(method, path string, body interface{}, expectedStatus int) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, _ := http.NewRequest(method, baseURL+path, bodyReader)
	req.Header.Set("X-User-ID", userID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != expectedStatus {
		log.Fatalf("Expected status %d, got %d. Body: %s", expectedStatus, resp.StatusCode, string(respBody))
	}
	fmt.Printf("Response: %s\n", string(respBody))
}

func createAsset(body map[string]interface{}) string {
	fmt.Println("Creating asset...")
	jsonBody, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", baseURL+"/assets", bytes.NewBuffer(jsonBody))
	req.Header.Set("X-User-ID", userID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Create asset failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 201 {
		respBody, _ := io.ReadAll(resp.Body)
		log.Fatalf("Create asset failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var res map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&res)
	id, _ := res["id"].(string)
	return id
}
